// Package config loads and validates the quantumtrack YAML configuration.
// User API keys are resolved from environment variables, never stored in the
// file. Watch provides fsnotify-based hot-reload so the user registry can be
// swapped without a restart.
package config
