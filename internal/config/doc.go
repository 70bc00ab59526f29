// Package config loads, normalizes, and validates Cutroom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CUTROOM_FFMPEG. The Config type centralizes every knob the CLI and API
// server need, allowing library/staging directories and tool locations to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical codec names, and clear validation errors.
package config
