// Package ws implements the WebSocket notification channel. A Hub tracks
// connected subscribers and fans out job-status-change events published by
// the notifier; slow subscribers are dropped rather than allowed to block
// delivery to the rest.
package ws
