package peer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/duochat/internal/console"
	"github.com/danmuck/duochat/internal/protocol/session"
	"github.com/danmuck/duochat/internal/testutil/testlog"
	"golang.org/x/sync/errgroup"
)

type lines []string

func (l *lines) Prompt() (string, error) {
	if len(*l) == 0 {
		return "", session.ErrInputClosed
	}
	line := (*l)[0]
	*l = (*l)[1:]
	return line, nil
}

type recorder struct {
	mu           sync.Mutex
	introduced   string
	connected    string
	messages     []string
	disconnected []string
}

func (r *recorder) Message(peer string, _ time.Time, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, peer+":"+text)
}
func (r *recorder) Status(string, ...any) {}
func (r *recorder) Warn(string, ...any)   {}
func (r *recorder) Disconnected(peer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, peer)
}
func (r *recorder) Listening(string)  {}
func (r *recorder) Connecting(string) {}
func (r *recorder) Connected(remote string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = remote
}
func (r *recorder) Introduced(peer string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.introduced = peer
}

func loopbackListener(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestBobAndAliceConversation(t *testing.T) {
	testlog.Start(t)
	ln, port := loopbackListener(t)
	ctx := context.Background()
	bob, alice := &recorder{}, &recorder{}

	var g errgroup.Group
	g.Go(func() error {
		return ServeOne(ctx, ln, "Bob", session.DefaultConfig(), &lines{"hi"}, bob)
	})
	g.Go(func() error {
		cfg := InitiatorConfig{Host: "127.0.0.1", Port: port, Name: "Alice", Session: session.DefaultConfig()}
		return RunInitiator(ctx, cfg, &lines{"hello"}, alice)
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("conversation: %v", err)
	}

	if bob.introduced != "Alice" || alice.introduced != "Bob" {
		t.Fatalf("introduced bob=%q alice=%q", bob.introduced, alice.introduced)
	}
	if len(bob.messages) != 1 || bob.messages[0] != "Alice:hello" {
		t.Fatalf("bob messages=%+v", bob.messages)
	}
	if len(alice.messages) != 1 || alice.messages[0] != "Bob:hi" {
		t.Fatalf("alice messages=%+v", alice.messages)
	}
	if len(bob.disconnected) != 1 || bob.disconnected[0] != "Alice" {
		t.Fatalf("bob disconnected=%+v", bob.disconnected)
	}
	if bob.connected == "" || alice.connected == "" {
		t.Fatalf("connected bob=%q alice=%q", bob.connected, alice.connected)
	}
}

func TestResponderClosesFirst(t *testing.T) {
	testlog.Start(t)
	ln, port := loopbackListener(t)
	ctx := context.Background()
	bob, alice := &recorder{}, &recorder{}

	var g errgroup.Group
	g.Go(func() error {
		return ServeOne(ctx, ln, "Bob", session.DefaultConfig(), &lines{}, bob)
	})
	g.Go(func() error {
		cfg := InitiatorConfig{Host: "127.0.0.1", Port: port, Name: "Alice", Session: session.DefaultConfig()}
		return RunInitiator(ctx, cfg, &lines{"hello", "anyone?"}, alice)
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(alice.disconnected) != 1 || alice.disconnected[0] != "Bob" {
		t.Fatalf("alice disconnected=%+v", alice.disconnected)
	}
	if len(bob.messages) != 1 {
		t.Fatalf("bob messages=%+v", bob.messages)
	}
}

func TestConversationThroughConsole(t *testing.T) {
	testlog.Start(t)
	ln, port := loopbackListener(t)
	ctx := context.Background()

	var bobOut, bobErr, aliceOut, aliceErr bytes.Buffer
	bob := console.New(strings.NewReader("hi\n"), &bobOut, &bobErr, false)
	alice := console.New(strings.NewReader("hello\n"), &aliceOut, &aliceErr, false)

	var g errgroup.Group
	g.Go(func() error {
		return ServeOne(ctx, ln, "Bob", session.DefaultConfig(), bob, bob)
	})
	g.Go(func() error {
		cfg := InitiatorConfig{Host: "localhost", Port: port, Name: "Alice", Session: session.DefaultConfig()}
		return RunInitiator(ctx, cfg, alice, alice)
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if !strings.Contains(bobOut.String(), "Alice:\thello") {
		t.Fatalf("bob output=%q", bobOut.String())
	}
	if !strings.Contains(bobOut.String(), "Alice disconnected.") {
		t.Fatalf("bob output=%q", bobOut.String())
	}
	if !strings.Contains(aliceOut.String(), "Bob:\thi") {
		t.Fatalf("alice output=%q", aliceOut.String())
	}
	if !strings.Contains(aliceOut.String(), "display name, Bob") {
		t.Fatalf("alice output=%q", aliceOut.String())
	}
}

func TestHandshakeDisconnectIsError(t *testing.T) {
	testlog.Start(t)
	ln, port := loopbackListener(t)

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()
	cfg := InitiatorConfig{Host: "127.0.0.1", Port: port, Name: "Alice", Session: session.DefaultConfig()}
	err := RunInitiator(context.Background(), cfg, &lines{}, &recorder{})
	if !errors.Is(err, session.ErrHandshakeFailed) {
		t.Fatalf("expected ErrHandshakeFailed, got %v", err)
	}
}

func TestDialRefused(t *testing.T) {
	testlog.Start(t)
	ln, port := loopbackListener(t)
	_ = ln.Close()

	_, err := Dial(context.Background(), "127.0.0.1", port)
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}

func TestDialUnknownHost(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := Dial(ctx, "duochat-peer.invalid", 8080)
	if !errors.Is(err, ErrResolve) {
		t.Fatalf("expected ErrResolve, got %v", err)
	}
}

func TestListenPortInUse(t *testing.T) {
	testlog.Start(t)
	_, port := loopbackListener(t)
	_, err := Listen(context.Background(), "127.0.0.1", port)
	if !errors.Is(err, ErrListen) {
		t.Fatalf("expected ErrListen, got %v", err)
	}
}

func TestServeOneInterruptedBeforePeer(t *testing.T) {
	testlog.Start(t)
	ln, _ := loopbackListener(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeOne(ctx, ln, "Bob", session.DefaultConfig(), &lines{}, &recorder{})
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not return after cancel")
	}
}

func TestAcceptOneClosesListener(t *testing.T) {
	testlog.Start(t)
	ln, port := loopbackListener(t)
	go func() {
		conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			defer conn.Close()
			time.Sleep(50 * time.Millisecond)
		}
	}()
	conn, err := AcceptOne(context.Background(), ln)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	defer conn.Close()
	if _, err := ln.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("expected closed listener, got %v", err)
	}
}

var _ Display = (*console.Console)(nil)
