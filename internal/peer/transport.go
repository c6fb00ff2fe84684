package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/danmuck/duochat/internal/logging"
)

var (
	ErrListen  = errors.New("peer: listen failed")
	ErrAccept  = errors.New("peer: accept failed")
	ErrResolve = errors.New("peer: resolve host failed")
	ErrConnect = errors.New("peer: connect failed")
)

// Listen binds a TCP listener on bindHost:port. An empty bindHost means all interfaces.
func Listen(ctx context.Context, bindHost string, port int) (net.Listener, error) {
	var lc net.ListenConfig
	addr := net.JoinHostPort(bindHost, strconv.Itoa(port))
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
	}
	logging.Infof("peer.Listen addr=%q", ln.Addr().String())
	return ln, nil
}

// AcceptOne waits for exactly one connection and then closes ln.
// Cancelling ctx closes ln and unblocks the wait.
func AcceptOne(ctx context.Context, ln net.Listener) (net.Conn, error) {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrAccept, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrAccept, err)
	}
	logging.Infof("peer.AcceptOne remote=%q", conn.RemoteAddr().String())
	return conn, nil
}

// Dial resolves host and connects to the first address that accepts.
func Dial(ctx context.Context, host string, port int) (net.Conn, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s: no addresses", ErrResolve, host)
	}

	var d net.Dialer
	var lastErr error
	for _, ip := range orderIPv4First(addrs) {
		target := net.JoinHostPort(ip.IP.String(), strconv.Itoa(port))
		conn, err := d.DialContext(ctx, "tcp", target)
		if err == nil {
			logging.Infof("peer.Dial host=%q remote=%q", host, conn.RemoteAddr().String())
			return conn, nil
		}
		logging.Debugf("peer.Dial host=%q target=%q err=%v", host, target, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %s:%d: %w", ErrConnect, host, port, lastErr)
}

func orderIPv4First(addrs []net.IPAddr) []net.IPAddr {
	out := make([]net.IPAddr, 0, len(addrs))
	for _, a := range addrs {
		if a.IP.To4() != nil {
			out = append(out, a)
		}
	}
	for _, a := range addrs {
		if a.IP.To4() == nil {
			out = append(out, a)
		}
	}
	return out
}
