// Package config loads typed configuration structs from environment
// variables, optionally seeded from a .env file during development.
//
// Each package defines its own Config struct with `env:` tags; main loads
// them with MustLoad at startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
package config
