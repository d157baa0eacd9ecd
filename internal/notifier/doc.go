// Package notifier implements the background poll loop that detects job
// status transitions and publishes change events to live subscribers.
//
// The loop keeps a retained last-seen-status map (State) so only genuine
// transitions produce events. Entries expire after a retention period; a
// job that reappears after eviction is treated as newly observed and emits
// one event.
package notifier
