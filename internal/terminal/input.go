package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	sc *bufio.Scanner
}

func (s scannerReader) ReadLine() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Input reads one prompt per line. Each line becomes the input buffer and
// every OnSubmit callback fires in registration order.
type Input struct {
	reader lineReader

	mu       sync.Mutex
	value    string
	handlers []func()
}

// NewInput reads plain lines from r.
func NewInput(r io.Reader) *Input {
	return &Input{reader: scannerReader{sc: bufio.NewScanner(r)}}
}

func newLineInput(r lineReader) *Input {
	return &Input{reader: r}
}

func (in *Input) OnSubmit(fn func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.handlers = append(in.handlers, fn)
}

func (in *Input) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

func (in *Input) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.value = ""
}

// Run submits lines until the input ends or ctx is done. A line already being
// read finishes before cancellation is noticed.
func (in *Input) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := in.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		in.mu.Lock()
		in.value = line
		handlers := append([]func(){}, in.handlers...)
		in.mu.Unlock()
		for _, h := range handlers {
			h()
		}
	}
}

// Console is an interactive terminal: line editing on input, and output that
// redraws the prompt when replies arrive while the user is typing.
type Console struct {
	Input       *Input
	Out         io.Writer
	Interactive bool
	restore     func()
}

// Open wraps stdin/stdout. On a TTY it switches stdin to raw mode and uses the
// x/term line editor; otherwise it falls back to plain line reading.
func Open(stdin *os.File, stdout io.Writer, prompt string) (*Console, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return &Console{Input: NewInput(stdin), Out: stdout}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{stdin, stdout}, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}
	return &Console{
		Input:       newLineInput(t),
		Out:         t,
		Interactive: true,
		restore:     func() { _ = term.Restore(fd, state) },
	}, nil
}

// Close restores the terminal state.
func (c *Console) Close() {
	if c.restore != nil {
		c.restore()
	}
}
