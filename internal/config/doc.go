// Package config loads, parses and validates application settings from
// environment variables and an optional config file. Components receive
// typed sub-structs and never read the environment themselves.
package config
