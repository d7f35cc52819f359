// ABOUTME: Explicit name->handler registry for model-issued commands
// ABOUTME: Execute contains every failure as a typed Result, never a panic

package command

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Command is a named, parameterized operation requested by the model.
type Command struct {
	Name        string            `json:"name"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Description string            `json:"-"`
}

// Handler executes a command with its bound parameters. Returned errors
// are contained by the registry; handlers never abort a request.
type Handler func(ctx context.Context, params map[string]string) (string, error)

// Registration binds a command name to its handler and the description
// shown to the model in the command catalog.
type Registration struct {
	Name        string
	Description string
	Params      []string // parameter names, for the catalog only
	Handler     Handler
}

// ResultKind classifies the outcome of Execute.
type ResultKind int

const (
	// ResultOK means the handler ran and produced output.
	ResultOK ResultKind = iota
	// ResultNotFound means no handler is registered under the name.
	ResultNotFound
	// ResultFailed means the handler returned an error or panicked.
	ResultFailed
)

// Result is the raw outcome of executing a command. It is conversational
// context for the model, never shown to the end user directly.
type Result struct {
	Kind   ResultKind
	Output string
}

// Text renders the result as plain text suitable for a model prompt.
func (r Result) Text() string {
	return r.Output
}

// OK reports whether the handler ran successfully.
func (r Result) OK() bool {
	return r.Kind == ResultOK
}

// Registry is the explicit, auditable command table. Safe for concurrent
// use; registration normally happens once at startup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Registration
	logger   *slog.Logger
}

// NewRegistry creates an empty command registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[string]Registration),
		logger:   logger.With("component", "command"),
	}
}

// Register binds a command name to a handler. Re-registering an existing
// name replaces the previous handler; the last registration wins.
func (r *Registry) Register(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[reg.Name]; exists {
		r.logger.Warn("command re-registered", "name", reg.Name)
	}
	r.handlers[reg.Name] = reg
}

// Exists reports whether a handler is registered under the name.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Execute looks up the command by name and invokes its handler with the
// bound parameters. An unknown name yields ResultNotFound and a handler
// error or panic yields ResultFailed; neither escapes as an error.
func (r *Registry) Execute(ctx context.Context, cmd Command) (result Result) {
	r.mu.RLock()
	reg, ok := r.handlers[cmd.Name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("command not found", "name", cmd.Name)
		return Result{
			Kind:   ResultNotFound,
			Output: fmt.Sprintf("command %q is not available", cmd.Name),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("command handler panicked", "name", cmd.Name, "panic", rec)
			result = Result{
				Kind:   ResultFailed,
				Output: fmt.Sprintf("command %q failed: internal handler fault", cmd.Name),
			}
		}
	}()

	out, err := reg.Handler(ctx, cmd.Parameters)
	if err != nil {
		r.logger.Warn("command failed", "name", cmd.Name, "error", err)
		return Result{
			Kind:   ResultFailed,
			Output: fmt.Sprintf("command %q failed: %v", cmd.Name, err),
		}
	}

	r.logger.Debug("command executed", "name", cmd.Name)
	return Result{Kind: ResultOK, Output: out}
}

// Describe renders the command catalog for the model's system prompt,
// one "name(params): description" line per registered command, sorted
// by name so the prompt is stable across runs.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.handlers) == 0 {
		return ""
	}

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands, format name(parameters): description.\n")
	for _, name := range names {
		reg := r.handlers[name]
		fmt.Fprintf(&b, "%s(%s): %s\n", reg.Name, strings.Join(reg.Params, ", "), reg.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
