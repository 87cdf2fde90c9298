// Package config handles configuration loading, parsing, and validation
// from environment variables (SILABAS_ prefix) and an optional YAML file.
// It provides type-safe access to application settings needed by different
// components while keeping configuration details separate from business logic.
package config
