package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/danmuck/duochat/internal/logging"
	"github.com/danmuck/duochat/internal/observability"
	"github.com/danmuck/duochat/internal/protocol"
	"github.com/danmuck/duochat/internal/protocol/frame"
)

var (
	ErrSessionClosed = errors.New("session: closed")
	ErrInvalidState  = errors.New("session: invalid state transition")
)

// Role is fixed at session creation and decides handshake and turn order.
type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// State tracks handshake progress.
type State int

const (
	StateStart State = iota
	StateNameExchanged
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateNameExchanged:
		return "name_exchanged"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type frameKind string

const (
	kindName    frameKind = "name"
	kindMessage frameKind = "message"
)

// Session owns the transport and the peer's display name for one conversation.
type Session struct {
	role      Role
	localName string
	codec     frame.Codec
	conn      io.ReadWriteCloser
	openedAt  time.Time

	mu         sync.Mutex
	state      State
	peerName   string
	peerSentAt time.Time

	closeOnce sync.Once
	closeErr  error
}

// New takes exclusive ownership of conn. The caller must arrange for Close to
// run on every exit path.
func New(conn io.ReadWriteCloser, role Role, localName string, cfg Config) *Session {
	cfg = cfg.WithDefaults()
	return &Session{
		role:      role,
		localName: localName,
		codec:     cfg.Codec,
		conn:      conn,
		openedAt:  time.Now(),
		state:     StateStart,
	}
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) LocalName() string {
	return s.localName
}

func (s *Session) PeerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerName
}

// PeerSentAt is the timestamp carried by the peer's name frame. Display only.
func (s *Session) PeerSentAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerSentAt
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RemoteAddr reports the peer address when the transport is a net.Conn.
func (s *Session) RemoteAddr() string {
	if nc, ok := s.conn.(net.Conn); ok && nc.RemoteAddr() != nil {
		return nc.RemoteAddr().String()
	}
	return ""
}

// Close releases the transport and the peer name. Only the first call does
// anything; later calls return nil.
func (s *Session) Close() error {
	closed := false
	s.closeOnce.Do(func() {
		closed = true
		s.mu.Lock()
		prev := s.state
		s.state = StateClosed
		s.peerName = ""
		s.mu.Unlock()
		if s.conn != nil {
			s.closeErr = s.conn.Close()
		}
		logging.Debugf("session.Close role=%s prev_state=%s err=%v", s.role, prev, s.closeErr)
	})
	if !closed {
		return nil
	}
	return s.closeErr
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	if s.state != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.state, to)
	}
	s.state = to
	return nil
}

func (s *Session) readFrame(kind frameKind) (frame.Frame, error) {
	f, err := s.codec.ReadFrame(s.conn)
	if err != nil {
		logging.Debugf("session.readFrame role=%s kind=%s outcome=%s err=%v", s.role, kind, protocol.Classify(err), err)
		return frame.Frame{}, err
	}
	observability.RecordFrameReceived(s.role.String(), string(kind), len(f.Payload))
	return f, nil
}

func (s *Session) writeText(kind frameKind, text string) (truncated bool, err error) {
	truncated, err = s.codec.WriteFrame(s.conn, []byte(text), -1)
	if truncated {
		// Message truncation is already shown on the console; only the name is warned here.
		logf := logging.Debugf
		if kind == kindName {
			logf = logging.Warnf
		}
		logf("session.writeText role=%s kind=%s truncated from=%d to=%d", s.role, kind, len(text), frame.MaxPayloadLen)
	}
	if err != nil {
		logging.Debugf("session.writeText role=%s kind=%s outcome=%s err=%v", s.role, kind, protocol.Classify(err), err)
		return truncated, err
	}
	n := len(text)
	if truncated {
		n = frame.MaxPayloadLen
	}
	observability.RecordFrameSent(s.role.String(), string(kind), n, truncated)
	return truncated, nil
}
