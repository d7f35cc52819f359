// Package protocol builds model-facing chat payloads and parses the
// structured replies back into typed answers. The payload carries a
// strict JSON-schema response format so the model always returns text,
// a continue-conversation flag, and optionally a command to execute.
package protocol
