// Package config loads, normalizes, and validates shortreel configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DEEPSEEK_API_KEY. A local .env file is folded into the environment first so
// provider credentials can live next to the project.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
