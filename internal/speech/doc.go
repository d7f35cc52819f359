// Package speech defines the speech-to-text and text-to-speech contracts
// used for voice messages, with OpenAI-compatible HTTP implementations.
package speech
