// Package integrations provides command providers backed by external
// services. Each provider contributes Registrations to the command
// registry at startup; handlers return plain-text results the model
// folds into its follow-up answer.
package integrations
