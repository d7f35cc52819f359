// Package persona loads the assistant's persona profile from a TOML
// file. The profile supplies the base system prompt and optional model
// and voice overrides; a built-in default is used when no file is
// configured.
package persona
