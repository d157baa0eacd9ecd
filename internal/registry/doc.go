// Package registry holds the static user directory loaded from configuration.
// Names are matched case-insensitively and the directory can be swapped as a
// whole when the config file is hot-reloaded.
package registry
