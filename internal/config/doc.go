// Package config loads, normalizes, and validates bookfetch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BLOCKFROST_PROJECT_ID. The Config type centralizes every knob the CLI and
// the fetch pipeline need, so output/log/cache directories, catalog and
// Blockfrost endpoints, and concurrency limits are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
