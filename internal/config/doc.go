// Package config loads, normalizes, and validates docket configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: data and log directories, the ingest region, and logging
// format and level. Always obtain settings through this package so downstream
// code receives sanitized paths and clear validation errors.
package config
