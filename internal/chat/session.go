// Package chat implements the client-side chat session: it owns the
// transcript and mediates between user input, the remote chat endpoint and
// whatever renders the conversation.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FallbackMessage replaces a pending reply whenever the exchange fails.
const FallbackMessage = "Sorry, I couldn't connect to the server. Please check that the chat backend is running."

// DefaultTimeout bounds a single exchange unless overridden with WithTimeout.
const DefaultTimeout = 60 * time.Second

// Handle identifies a rendered entry for a Presenter.
type Handle interface{}

// Presenter renders transcript changes.
type Presenter interface {
	AppendEntry(e Entry) Handle
	UpdateEntry(h Handle, e Entry)
}

// RejectNotifier is an optional Presenter extension. It is told about prompts
// the session refused, such as one entered while a reply is still pending.
type RejectNotifier interface {
	PromptRejected(prompt string, err error)
}

// Input is the source of submitted prompts.
type Input interface {
	OnSubmit(fn func())
	Value() string
	Clear()
}

// Endpoint maps a prompt to a reply over the network.
type Endpoint interface {
	Send(ctx context.Context, prompt string) (string, error)
}

type Option func(*Session)

// WithTimeout bounds each exchange. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session owns one transcript. It accepts one prompt at a time: a submission
// made while a reply is still pending is dropped, and the presenter hears
// about it if it implements RejectNotifier.
type Session struct {
	endpoint   Endpoint
	presenter  Presenter
	input      Input
	logger     *zap.Logger
	timeout    time.Duration
	transcript *Transcript

	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a session and subscribes it to input submissions. presenter and
// input may be nil; endpoint may not.
func New(endpoint Endpoint, presenter Presenter, input Input, opts ...Option) *Session {
	if endpoint == nil {
		panic("chat: nil Endpoint")
	}
	if presenter == nil {
		presenter = nopPresenter{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		endpoint:   endpoint,
		presenter:  presenter,
		input:      input,
		logger:     zap.NewNop(),
		timeout:    DefaultTimeout,
		transcript: NewTranscript(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, o := range opts {
		o(s)
	}
	if input != nil {
		input.OnSubmit(func() { s.Submit(input.Value()) })
	}
	return s
}

// Submit sends prompt to the endpoint. Blank prompts are ignored. The reply
// arrives asynchronously and is observable through Transcript and the
// presenter.
func (s *Session) Submit(prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return
	}
	// s.mu also orders presenter calls, so a reply is always rendered before
	// the next prompt.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("submission after close dropped")
		return
	}
	userIdx, botIdx, err := s.transcript.Begin(prompt)
	if err != nil {
		s.logger.Warn("submission dropped", zap.Error(err))
		if n, ok := s.presenter.(RejectNotifier); ok {
			n.PromptRejected(prompt, err)
		}
		return
	}
	s.wg.Add(1)

	user, _ := s.transcript.At(userIdx)
	s.presenter.AppendEntry(user)
	if s.input != nil {
		s.input.Clear()
	}
	bot, _ := s.transcript.At(botIdx)
	h := s.presenter.AppendEntry(bot)

	go s.exchange(prompt, botIdx, h)
}

func (s *Session) exchange(prompt string, botIdx int, h Handle) {
	defer s.wg.Done()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	state, text := StateFinal, ""
	reply, err := s.endpoint.Send(ctx, prompt)
	if err != nil {
		s.logger.Warn("chat exchange failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		state, text = StateError, FallbackMessage
	} else {
		s.logger.Debug("chat exchange complete",
			zap.Int("reply_len", len(reply)),
			zap.Duration("elapsed", time.Since(start)))
		text = reply
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.transcript.Resolve(botIdx, state, text)
	if err != nil {
		s.logger.Error("resolve pending entry", zap.Int("index", botIdx), zap.Error(err))
		return
	}
	s.presenter.UpdateEntry(h, e)
}

// Transcript returns a snapshot of the conversation so far.
func (s *Session) Transcript() []Entry {
	return s.transcript.Entries()
}

// Pending reports whether a reply is outstanding.
func (s *Session) Pending() bool {
	return s.transcript.Pending()
}

// Wait blocks until every dispatched exchange has resolved.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding exchanges, which resolve to errors, and waits for
// them. Later submissions are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

type nopPresenter struct{}

func (nopPresenter) AppendEntry(Entry) Handle { return nil }
func (nopPresenter) UpdateEntry(Handle, Entry) {}
