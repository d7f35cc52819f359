// Package gateway exposes the conversation orchestrator over HTTP.
// Requests are authenticated with bearer JWTs resolved against the user
// store; guests and banned users are refused before any model call.
package gateway
