package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/duochat/internal/logging"
	"github.com/danmuck/duochat/internal/observability"
	"github.com/danmuck/duochat/internal/protocol"
	"github.com/danmuck/duochat/internal/protocol/frame"
)

var (
	ErrInputClosed = errors.New("session: local input closed")
	ErrNotReady    = errors.New("session: handshake not complete")
)

// Prompter supplies the local side's next message. It returns ErrInputClosed
// when there is no more input.
type Prompter interface {
	Prompt() (string, error)
}

// Display renders session progress for the local user.
type Display interface {
	Message(peer string, sentAt time.Time, text string)
	Status(format string, args ...any)
	Warn(format string, args ...any)
	Disconnected(peer string)
}

// Run drives the turn-taking loop until the peer disconnects, local input ends,
// ctx is cancelled, or an io failure occurs. Only the io failure is returned.
//
// Initiator speaks first; Responder listens first. Neither side sends twice
// without receiving in between.
func Run(ctx context.Context, s *Session, in Prompter, out Display) error {
	if st := s.State(); st != StateReady {
		return fmt.Errorf("%w: state=%s", ErrNotReady, st)
	}
	peer := s.PeerName()
	stop := context.AfterFunc(ctx, func() {
		_ = s.Close()
	})
	defer stop()

	started := time.Now()
	var err error
	switch s.role {
	case RoleInitiator:
		err = s.initiatorLoop(in, out, peer)
	case RoleResponder:
		out.Status("Waiting for 1st message from %s...", peer)
		err = s.responderLoop(in, out, peer)
	}
	return s.finish(ctx, err, out, peer, started)
}

func (s *Session) initiatorLoop(in Prompter, out Display, peer string) error {
	for {
		if err := s.sendTurn(in, out); err != nil {
			return err
		}
		out.Status("Waiting for response...")
		if err := s.receiveTurn(out, peer); err != nil {
			return err
		}
	}
}

func (s *Session) responderLoop(in Prompter, out Display, peer string) error {
	for {
		if err := s.receiveTurn(out, peer); err != nil {
			return err
		}
		if err := s.sendTurn(in, out); err != nil {
			return err
		}
		out.Status("Waiting for response...")
	}
}

func (s *Session) sendTurn(in Prompter, out Display) error {
	text, err := in.Prompt()
	if err != nil {
		return err
	}
	truncated, err := s.writeText(kindMessage, text)
	if truncated {
		out.Warn("Message too long, truncated from %d to %d bytes", len(text), frame.MaxPayloadLen)
	}
	return err
}

func (s *Session) receiveTurn(out Display, peer string) error {
	f, err := s.readFrame(kindMessage)
	if err != nil {
		return err
	}
	out.Message(peer, f.SentAt(), f.Text())
	return nil
}

func (s *Session) finish(ctx context.Context, err error, out Display, peer string, started time.Time) error {
	outcome := protocol.Classify(err)
	label := outcome.String()
	switch {
	case errors.Is(err, ErrInputClosed):
		label = "input_closed"
		err = nil
	case ctx.Err() != nil:
		label = "interrupted"
		err = nil
	case outcome == protocol.OutcomeDisconnected:
		out.Disconnected(peer)
		err = nil
	}
	observability.RecordSessionEnd(s.role.String(), label, time.Since(started))
	if err != nil {
		logging.Errf("session.Run role=%s peer=%q outcome=%s err=%v", s.role, peer, label, err)
		return err
	}
	logging.Infof("session.Run role=%s peer=%q outcome=%s", s.role, peer, label)
	return nil
}
