// Package command routes model-issued commands to registered handlers.
// Registration is an explicit table populated at startup; dispatch never
// raises, it returns typed results so failures can flow back into the
// conversation.
package command
