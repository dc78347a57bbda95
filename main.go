package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/anmolbhatia05/socksx/internal/addr"
	"github.com/anmolbhatia05/socksx/internal/dialer"
	"github.com/anmolbhatia05/socksx/internal/relay"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		socks5Listen = pflag.String("socks5-listen", "", "SOCKS5 relay listen address (e.g. 127.0.0.1:1080). Empty disables.")
		socks6Listen = pflag.String("socks6-listen", "", "SOCKS6 relay listen address (e.g. 127.0.0.1:1081). Empty disables.")

		chain = pflag.StringSlice("chain", nil, "Static proxy chain: comma-separated socks6://[user:pass@]host:port hops traversed in order")

		socks5Auth = pflag.String("socks5-auth", "", "Require user:pass from inbound SOCKS5 peers. Empty allows anonymous access.")

		dialTimeout        = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for outbound DNS lookup and TCP connect")
		negotiationTimeout = pflag.Duration("negotiation-timeout", 10*time.Second, "Timeout for protocol negotiation to set up a connection")
		tcpKeepAlive       = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		verbose            = pflag.Bool("verbose", false, "Enable per-connection debug logging")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	configureLogging(*verbose)

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	if *socks5Listen == "" && *socks6Listen == "" {
		return errors.New("no listeners enabled (set at least one of --socks5-listen, --socks6-listen)")
	}

	staticLinks, err := parseChain(*chain)
	if err != nil {
		return fmt.Errorf("invalid --chain: %w", err)
	}

	inboundAuth, err := parseAuth(*socks5Auth)
	if err != nil {
		return fmt.Errorf("invalid --socks5-auth: %w", err)
	}

	cfg := relay.Config{
		NegotiationTimeout: *negotiationTimeout,
		DialTimeout:        *dialTimeout,
		KeepAlive:          ka,
		Dialer: dialer.NewDirectDialer(dialer.Config{
			DialTimeout: *dialTimeout,
			KeepAlive:   ka,
		}),
	}

	g, ctx := errgroup.WithContext(context.Background())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *socks5Listen != "" {
		ln, err := relay.ListenTCP(ctx, "tcp", *socks5Listen, ka)
		if err != nil {
			return fmt.Errorf("socks5 listen: %w", err)
		}
		srv := relay.NewServer(cfg, relay.NewSocks5Handler(cfg, inboundAuth), *verbose)
		context.AfterFunc(ctx, func() {
			_ = ln.Close()
		})

		g.Go(func() error {
			if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("socks5 serve: %w", err)
			}
			return nil
		})
		log.Info().Str("listen", *socks5Listen).Msg("socks5 relay listening")
	}

	if *socks6Listen != "" {
		ln, err := relay.ListenTCP(ctx, "tcp", *socks6Listen, ka)
		if err != nil {
			return fmt.Errorf("socks6 listen: %w", err)
		}
		srv := relay.NewServer(cfg, relay.NewSocks6Handler(cfg, staticLinks), *verbose)
		context.AfterFunc(ctx, func() {
			_ = ln.Close()
		})

		g.Go(func() error {
			if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("socks6 serve: %w", err)
			}
			return nil
		})
		log.Info().Str("listen", *socks6Listen).Int("hops", len(staticLinks)).Msg("socks6 relay listening")
	}

	err = g.Wait()

	log.Info().Msg("shutting down")
	return err
}

func configureLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func parseChain(hops []string) ([]addr.ProxyAddress, error) {
	links := make([]addr.ProxyAddress, 0, len(hops))
	for _, hop := range hops {
		link, err := addr.ParseProxyAddress(strings.TrimSpace(hop))
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

func parseAuth(s string) (*addr.Credentials, error) {
	if s == "" {
		return nil, nil
	}
	user, pass, ok := strings.Cut(s, ":")
	if !ok || user == "" {
		return nil, errors.New("expected user:pass")
	}
	creds := addr.NewCredentials(user, pass)
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}
