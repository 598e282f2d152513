// Package config loads typed configuration structs from environment
// variables (caarlos0/env) with optional .env bootstrap (godotenv). Every
// infrastructure package in this module declares its own Config struct
// with env tags; this package parses and caches them once per process.
package config
