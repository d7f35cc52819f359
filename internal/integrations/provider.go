// ABOUTME: Provider interface and registration helper for command integrations
// ABOUTME: Providers contribute command registrations to the registry at startup

package integrations

import (
	"log/slog"

	"github.com/averla/assist-gateway/internal/command"
)

// Provider contributes one or more commands to the registry.
type Provider interface {
	// Commands returns the registrations this provider offers.
	Commands() []command.Registration
}

// RegisterAll registers every command from every provider.
func RegisterAll(registry *command.Registry, providers ...Provider) {
	logger := slog.Default().With("component", "integrations")
	for _, p := range providers {
		for _, reg := range p.Commands() {
			registry.Register(reg)
			logger.Debug("registered command", "name", reg.Name)
		}
	}
}
