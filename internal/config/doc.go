// Package config loads the assist-gateway YAML configuration with
// environment variable expansion, duration parsing, and validation.
package config
