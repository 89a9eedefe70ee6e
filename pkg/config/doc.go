// Package config handles configuration management for linkvault.
// It supports loading configuration from multiple sources including
// the embedded defaults, a user TOML file and environment variables.
package config
