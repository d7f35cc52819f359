// ABOUTME: Per-request conversation state machine composing sessions, codec, backend, and commands
// ABOUTME: History commits only after a successful round-trip; failures never escape as raw faults

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/averla/assist-gateway/internal/command"
	"github.com/averla/assist-gateway/internal/model"
	"github.com/averla/assist-gateway/internal/protocol"
	"github.com/averla/assist-gateway/internal/session"
	"github.com/averla/assist-gateway/internal/speech"
)

// ErrTranscriptionFailed marks a voice request whose audio produced no
// usable text. The request aborts without touching session history.
var ErrTranscriptionFailed = errors.New("transcription failed")

// errorAnswerText is what the user sees when a request aborts. Full
// detail goes to the log, never to the caller.
const errorAnswerText = "Something went wrong while handling your request. Please try again."

// SessionStore is what the orchestrator needs from the session registry.
type SessionStore interface {
	GetOrCreate(userID string) session.Session
	Append(userID string, msgs ...session.Message)
}

// CommandExecutor is what the orchestrator needs from the dispatcher.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd command.Command) command.Result
	Describe() string
}

// Request is one inbound conversational call.
type Request struct {
	UserID string
	Text   string
	Voice  []byte // raw audio; presence makes this a voice request
}

// Answer is the final outcome of a request. Always well formed: an
// aborted request carries a generic error text and a false
// continue-conversation flag.
type Answer struct {
	RequestID            string
	Text                 string
	ContinueConversation bool
	Voice                []byte // synthesized reply for voice requests, nil otherwise

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Sessions    SessionStore
	Commands    CommandExecutor
	Backend     model.Backend
	Recognizer  speech.Recognizer  // optional; nil disables voice input
	Synthesizer speech.Synthesizer // optional; nil disables voice output

	Model         string
	PersonaPrompt string

	Logger *slog.Logger
}

// Orchestrator composes the conversation core into the per-request
// state machine.
type Orchestrator struct {
	sessions    SessionStore
	commands    CommandExecutor
	backend     model.Backend
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer

	modelName     string
	personaPrompt string

	logger *slog.Logger
}

// New creates an orchestrator from its collaborators.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sessions:      cfg.Sessions,
		commands:      cfg.Commands,
		backend:       cfg.Backend,
		recognizer:    cfg.Recognizer,
		synthesizer:   cfg.Synthesizer,
		modelName:     cfg.Model,
		personaPrompt: cfg.PersonaPrompt,
		logger:        logger.With("component", "orchestrator"),
	}
}

// Process runs one request through the state machine and always returns
// a well-formed answer. Session history is committed only after a fully
// successful round-trip; aborted requests leave it untouched.
func (o *Orchestrator) Process(ctx context.Context, req Request) (answer *Answer) {
	requestID := uuid.New().String()
	log := o.logger.With("request_id", requestID, "user_id", req.UserID)

	// Catch-all: nothing escapes to the caller as a raw fault.
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("internal error while processing request", "panic", rec)
			answer = o.errorAnswer(requestID)
		}
	}()

	// Session resolution always succeeds and refreshes the last-call
	// timestamp, which also shields the session from a concurrent sweep.
	sess := o.sessions.GetOrCreate(req.UserID)
	log.Debug("session resolved", "session_id", sess.ID, "history_len", len(sess.History))

	isVoice := len(req.Voice) > 0
	text := req.Text
	if isVoice {
		recognized, err := o.transcribe(ctx, req.Voice)
		if err != nil {
			log.Warn("aborting request", "error", err)
			return o.errorAnswer(requestID)
		}
		text = recognized
		log.Debug("audio transcribed", "chars", len(text))
	}
	if text == "" {
		log.Warn("request carries no text to process")
		return o.errorAnswer(requestID)
	}

	first, err := o.query(ctx, sess, session.RoleUser, text)
	if err != nil {
		o.logQueryFailure(log, err)
		return o.errorAnswer(requestID)
	}

	final := first
	if first.Command != nil {
		log.Info("model requested command", "name", first.Command.Name)
		result := o.commands.Execute(ctx, *first.Command)

		// The raw result never reaches the user; the model turns it
		// into conversational text in a second round-trip. That payload
		// must carry the in-flight exchange so the model knows which
		// question the result answers. Nothing is committed yet, so the
		// exchange rides along on a throwaway copy of the session.
		pending := sess
		pending.History = append(pending.History, session.NewMessage(session.RoleUser, text))
		if first.Text != "" {
			pending.History = append(pending.History, session.NewMessage(session.RoleAssistant, first.Text))
		}

		final, err = o.query(ctx, pending, session.RoleSystem, commandContext(*first.Command, result))
		if err != nil {
			o.logQueryFailure(log, err)
			return o.errorAnswer(requestID)
		}
	}

	// Commit the exchange as two messages, user first.
	o.sessions.Append(req.UserID,
		session.NewMessage(session.RoleUser, text),
		session.NewMessage(session.RoleAssistant, final.Text),
	)

	answer = &Answer{
		RequestID:            requestID,
		Text:                 final.Text,
		ContinueConversation: final.ContinueConversation,
		PromptTokens:         first.PromptTokens + extraPrompt(first, final),
		CompletionTokens:     first.CompletionTokens + extraCompletion(first, final),
		TotalTokens:          first.TotalTokens + extraTotal(first, final),
	}

	if isVoice {
		answer.Voice = o.synthesize(ctx, final.Text, log)
	}

	log.Info("request complete",
		"session_id", sess.ID,
		"voice", isVoice,
		"total_tokens", answer.TotalTokens)
	return answer
}

// query builds a payload from the session history plus the new message,
// sends it, and parses the structured reply.
func (o *Orchestrator) query(ctx context.Context, sess session.Session, role, text string) (*protocol.Answer, error) {
	payload := protocol.BuildRequest(sess, role, text, protocol.ModelConfig{
		Model:        o.modelName,
		SystemPrompt: o.systemPrompt(),
	})

	raw, err := o.backend.Send(ctx, payload)
	if err != nil {
		return nil, err
	}
	return protocol.ParseResponse(raw)
}

// systemPrompt combines the persona prompt with the current command
// catalog so the model knows what it may ask the host to run.
func (o *Orchestrator) systemPrompt() string {
	prompt := o.personaPrompt
	if o.commands == nil {
		return prompt
	}
	catalog := o.commands.Describe()
	if catalog == "" {
		return prompt
	}
	if prompt == "" {
		return catalog
	}
	return prompt + "\n\n" + catalog
}

// transcribe turns a voice payload into text. A missing recognizer, a
// transport failure, or an empty transcript all count as
// ErrTranscriptionFailed.
func (o *Orchestrator) transcribe(ctx context.Context, audio []byte) (string, error) {
	if o.recognizer == nil {
		return "", fmt.Errorf("%w: no recognizer configured", ErrTranscriptionFailed)
	}
	text, err := o.recognizer.Recognize(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}
	return text, nil
}

// synthesize renders the final text to audio. Failure degrades to a
// text-only answer rather than aborting the request.
func (o *Orchestrator) synthesize(ctx context.Context, text string, log *slog.Logger) []byte {
	if o.synthesizer == nil {
		return nil
	}
	audio, err := o.synthesizer.Synthesize(ctx, text)
	if err != nil {
		log.Warn("voice synthesis failed, returning text only", "error", err)
		return nil
	}
	return audio
}

// commandContext renders a command outcome as conversational context for
// the follow-up model query.
func commandContext(cmd command.Command, result command.Result) string {
	switch result.Kind {
	case command.ResultOK:
		return fmt.Sprintf("Result of executing command %q: %s", cmd.Name, result.Text())
	default:
		return fmt.Sprintf("Executing command %q did not succeed: %s. Explain this to the user.", cmd.Name, result.Text())
	}
}

func (o *Orchestrator) logQueryFailure(log *slog.Logger, err error) {
	var transportErr *model.TransportError
	switch {
	case errors.As(err, &transportErr):
		log.Error("model backend unreachable or unhealthy", "error", err, "status", transportErr.StatusCode)
	case errors.Is(err, protocol.ErrMalformedResponse):
		log.Error("model reply failed schema validation", "error", err)
	default:
		log.Error("model query failed", "error", err)
	}
}

func (o *Orchestrator) errorAnswer(requestID string) *Answer {
	return &Answer{
		RequestID:            requestID,
		Text:                 errorAnswerText,
		ContinueConversation: false,
	}
}

// extraPrompt and friends add the second round-trip's usage when a
// command was dispatched; first == final otherwise and nothing is added.
func extraPrompt(first, final *protocol.Answer) int {
	if first == final {
		return 0
	}
	return final.PromptTokens
}

func extraCompletion(first, final *protocol.Answer) int {
	if first == final {
		return 0
	}
	return final.CompletionTokens
}

func extraTotal(first, final *protocol.Answer) int {
	if first == final {
		return 0
	}
	return final.TotalTokens
}
