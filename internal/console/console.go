// Package console renders a duochat session on a terminal and reads the local
// user's messages one line at a time.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/danmuck/duochat/internal/protocol/session"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const promptText = "Message > "

type paint func(...string) string

func plain(strs ...string) string {
	return strings.Join(strs, " ")
}

type palette struct {
	time  paint
	name  paint
	addr  paint
	warn  paint
	err   paint
	label paint
}

func newPalette(w io.Writer, color bool) palette {
	if !color {
		return palette{time: plain, name: plain, addr: plain, warn: plain, err: plain, label: plain}
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI)
	blue := r.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	yellow := r.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	red := r.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	return palette{
		time:  blue.Render,
		name:  yellow.Render,
		addr:  blue.Render,
		warn:  yellow.Render,
		err:   red.Render,
		label: blue.Render,
	}
}

// Console implements session.Prompter and the session/peer display contracts.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	colors palette
	eof    bool
}

func New(in io.Reader, out, errOut io.Writer, color bool) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		colors: newPalette(out, color),
	}
}

// Stdio binds the process's standard streams. Color is used only when stdout
// is a terminal and noColor is false.
func Stdio(noColor bool) *Console {
	color := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	if !color {
		return New(os.Stdin, os.Stdout, os.Stderr, false)
	}
	return New(os.Stdin, colorable.NewColorableStdout(), colorable.NewColorableStderr(), true)
}

// Prompt reads one line, without its line terminator. A final unterminated
// line is still delivered; the read after it reports session.ErrInputClosed.
func (c *Console) Prompt() (string, error) {
	if c.eof {
		return "", session.ErrInputClosed
	}
	fmt.Fprint(c.out, promptText)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("console: read input: %w", err)
		}
		c.eof = true
		if line == "" {
			fmt.Fprintln(c.out)
			return "", session.ErrInputClosed
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) Message(peer string, sentAt time.Time, text string) {
	fmt.Fprintf(c.out, "%s\t%s\t%s\n", c.colors.time(formatTime(sentAt)), c.colors.name(peer+":"), text)
}

func (c *Console) Status(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintf(c.errOut, "%s %s\n", c.colors.warn("[Warning]:"), fmt.Sprintf(format, args...))
}

func (c *Console) Error(err error) {
	fmt.Fprintf(c.errOut, "%s %v\n", c.colors.err("[Error]:"), err)
}

func (c *Console) Disconnected(peer string) {
	fmt.Fprintf(c.out, "%s disconnected.\n", c.colors.name(peer))
}

func (c *Console) Listening(addr string) {
	fmt.Fprintf(c.out, "Waiting for a peer to connect on %s ...\n", c.colors.addr(addr))
}

func (c *Console) Connecting(addr string) {
	fmt.Fprintf(c.out, "Requesting to connect to %s ...\n", c.colors.addr(addr))
}

func (c *Console) Connected(remote string) {
	fmt.Fprintf(c.out, "Connected to peer at %s ([IP address]:[port number])\n", c.colors.addr(remote))
}

func (c *Console) Introduced(peer string, sentAt time.Time) {
	fmt.Fprintf(
		c.out,
		"Info exchange complete: peer sent display name, %s, at %s\n",
		c.colors.name(peer),
		c.colors.time(formatTime(sentAt)),
	)
}

// formatTime renders a frame timestamp in local time, asctime layout.
func formatTime(t time.Time) string {
	return t.Local().Format(time.ANSIC)
}
