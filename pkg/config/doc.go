// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each configuration type is parsed once per process and cached, so packages
// can load their own config independently without re-reading the environment.
package config
