// Package terminal renders a chat session on a terminal and feeds it typed
// lines.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/VARUNx96/AI-CHATBOT/internal/chat"
)

var (
	userColor  = lipgloss.Color("#2563EB")
	botColor   = lipgloss.Color("#374151")
	mutedColor = lipgloss.Color("#6B7280")
	errorColor = lipgloss.Color("#B91C1C")
)

// Styles holds the label and text styles for each kind of line.
type Styles struct {
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	ErrorLabel lipgloss.Style
	Pending    lipgloss.Style
	ErrorText  lipgloss.Style
	Notice     lipgloss.Style
	Text       lipgloss.Style
}

// DefaultStyles builds styles for output written through r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		UserLabel:  r.NewStyle().Bold(true).Foreground(userColor),
		BotLabel:   r.NewStyle().Bold(true).Foreground(botColor),
		ErrorLabel: r.NewStyle().Bold(true).Foreground(errorColor),
		Pending:    r.NewStyle().Italic(true).Foreground(mutedColor),
		ErrorText:  r.NewStyle().Foreground(errorColor),
		Notice:     r.NewStyle().Italic(true).Foreground(mutedColor),
		Text:       r.NewStyle(),
	}
}

// Presenter prints transcript entries as lines. A terminal cannot rewrite
// earlier output, so resolving a pending entry prints its final line.
type Presenter struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	pending map[string]bool
}

var _ chat.RejectNotifier = (*Presenter)(nil)

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{
		out:     out,
		styles:  DefaultStyles(lipgloss.NewRenderer(out)),
		pending: make(map[string]bool),
	}
}

func (p *Presenter) AppendEntry(e chat.Entry) chat.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.State == chat.StatePending {
		p.pending[e.ID] = true
	}
	p.printLocked(e)
	return e.ID
}

func (p *Presenter) UpdateEntry(h chat.Handle, e chat.Entry) {
	id, ok := h.(string)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pending[id] {
		return
	}
	delete(p.pending, id)
	p.printLocked(e)
}

// PromptRejected tells the user a typed line was not sent, so it can be
// entered again once the reply arrives.
func (p *Presenter) PromptRejected(prompt string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := "not sent, still waiting for a reply: "
	if !errors.Is(err, chat.ErrBusy) {
		msg = "not sent: "
	}
	fmt.Fprintln(p.out, p.styles.Notice.Render(msg+prompt))
}

func (p *Presenter) printLocked(e chat.Entry) {
	fmt.Fprintln(p.out, p.render(e))
}

func (p *Presenter) render(e chat.Entry) string {
	s := p.styles
	switch {
	case e.Role == chat.RoleUser:
		return s.UserLabel.Render("you") + " " + s.Text.Render(e.Text)
	case e.State == chat.StatePending:
		return s.BotLabel.Render("bot") + " " + s.Pending.Render("...")
	case e.State == chat.StateError:
		return s.ErrorLabel.Render("bot") + " " + s.ErrorText.Render(e.Text)
	default:
		return s.BotLabel.Render("bot") + " " + s.Text.Render(e.Text)
	}
}
