// Package orchestrator drives one conversational exchange end to end:
// resolve the session, transcribe voice if present, query the model,
// execute a model-issued command and ask the model to explain the
// outcome, commit the exchange to history, and synthesize voice for
// voice requests. Every failure is contained here; callers always get a
// well-formed answer.
package orchestrator
