package relay

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CopyBidirectional pumps bytes between left and right until either
// direction reaches end-of-stream or errors, then closes both sides. There
// is no half-duplex linger.
func CopyBidirectional(ctx context.Context, left, right net.Conn) error {
	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			_ = left.Close()
			_ = right.Close()
		})
	}
	defer closeBoth()

	// If the context is canceled, close both sides to unblock the copies.
	stop := context.AfterFunc(ctx, closeBoth)
	defer stop()

	g := errgroup.Group{}

	g.Go(func() error {
		_, err := io.Copy(left, right)
		closeBoth()
		return ignoreClosed(err)
	})

	g.Go(func() error {
		_, err := io.Copy(right, left)
		closeBoth()
		return ignoreClosed(err)
	})

	return g.Wait()
}

// ignoreClosed drops the error a copy loop reports when its peer loop won
// the race and closed both conns first.
func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}
