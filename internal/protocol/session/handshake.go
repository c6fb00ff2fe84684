package session

import (
	"errors"
	"fmt"

	"github.com/danmuck/duochat/internal/logging"
	"github.com/danmuck/duochat/internal/protocol"
)

var ErrHandshakeFailed = errors.New("session: display name exchange failed")

// Handshake exchanges display names, ordered by role:
// Responder sends then receives, Initiator receives then sends.
//
// A disconnect during the exchange is a handshake failure, not a graceful end.
func (s *Session) Handshake() error {
	if s.State() != StateStart {
		return fmt.Errorf("%w: handshake from %s", ErrInvalidState, s.State())
	}
	var err error
	switch s.role {
	case RoleResponder:
		if err = s.sendName(); err == nil {
			err = s.receiveName()
		}
	case RoleInitiator:
		if err = s.receiveName(); err == nil {
			err = s.sendName()
		}
	default:
		err = fmt.Errorf("%w: unknown role %s", ErrInvalidState, s.role)
	}
	if err != nil {
		return err
	}
	if err := s.transition(StateNameExchanged, StateReady); err != nil {
		return err
	}
	logging.Infof("session.Handshake role=%s peer=%q state=%s", s.role, s.PeerName(), StateReady)
	return nil
}

func (s *Session) sendName() error {
	if _, err := s.writeText(kindName, s.localName); err != nil {
		return handshakeError("send display name", err)
	}
	return nil
}

func (s *Session) receiveName() error {
	f, err := s.readFrame(kindName)
	if err != nil {
		return handshakeError("receive display name", err)
	}
	s.mu.Lock()
	if s.state != StateStart {
		st := s.state
		s.mu.Unlock()
		if st == StateClosed {
			return ErrSessionClosed
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, st, StateNameExchanged)
	}
	s.peerName = f.Text()
	s.peerSentAt = f.SentAt()
	s.state = StateNameExchanged
	s.mu.Unlock()
	return nil
}

func handshakeError(step string, err error) error {
	if protocol.Classify(err) == protocol.OutcomeDisconnected {
		return fmt.Errorf("%w: %s: peer disconnected", ErrHandshakeFailed, step)
	}
	return fmt.Errorf("%w: %s: %w", ErrHandshakeFailed, step, err)
}
