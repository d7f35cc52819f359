// Package model defines the language-model backend contract and an
// OpenAI-compatible HTTP implementation of it.
package model
