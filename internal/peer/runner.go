package peer

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/danmuck/duochat/internal/logging"
	"github.com/danmuck/duochat/internal/protocol/session"
)

// Display extends the session display with transport lifecycle lines.
type Display interface {
	session.Display
	Listening(addr string)
	Connecting(addr string)
	Connected(remote string)
	Introduced(peer string, sentAt time.Time)
}

type ResponderConfig struct {
	BindHost string
	Port     int
	Name     string
	Session  session.Config
}

type InitiatorConfig struct {
	Host    string
	Port    int
	Name    string
	Session session.Config
}

// RunResponder listens on the configured port, serves exactly one peer and returns.
func RunResponder(ctx context.Context, cfg ResponderConfig, in session.Prompter, out Display) error {
	ln, err := Listen(ctx, cfg.BindHost, cfg.Port)
	if err != nil {
		return err
	}
	return ServeOne(ctx, ln, cfg.Name, cfg.Session, in, out)
}

// ServeOne accepts one connection from ln and runs the Responder side on it.
// ln is closed once the peer is accepted.
func ServeOne(ctx context.Context, ln net.Listener, name string, cfg session.Config, in session.Prompter, out Display) error {
	out.Listening(ln.Addr().String())
	conn, err := AcceptOne(ctx, ln)
	if err != nil {
		if ctx.Err() != nil {
			logging.Infof("peer.ServeOne interrupted before a peer connected")
			return nil
		}
		return err
	}
	return Converse(ctx, session.New(conn, session.RoleResponder, name, cfg), in, out)
}

// RunInitiator connects to the configured host and runs the Initiator side.
func RunInitiator(ctx context.Context, cfg InitiatorConfig, in session.Prompter, out Display) error {
	out.Connecting(net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	conn, err := Dial(ctx, cfg.Host, cfg.Port)
	if err != nil {
		if ctx.Err() != nil {
			logging.Infof("peer.RunInitiator interrupted while connecting")
			return nil
		}
		return err
	}
	return Converse(ctx, session.New(conn, session.RoleInitiator, cfg.Name, cfg.Session), in, out)
}

// Converse owns s: it runs the handshake and the turn-taking loop and closes s
// before returning, whatever the outcome.
func Converse(ctx context.Context, s *session.Session, in session.Prompter, out Display) error {
	defer s.Close()
	out.Connected(s.RemoteAddr())

	stop := context.AfterFunc(ctx, func() {
		_ = s.Close()
	})
	err := s.Handshake()
	stop()
	if err != nil {
		if ctx.Err() != nil {
			logging.Infof("peer.Converse role=%s interrupted during handshake", s.Role())
			return nil
		}
		return err
	}
	out.Introduced(s.PeerName(), s.PeerSentAt())
	return session.Run(ctx, s, in, out)
}
