// Package quantum defines the capability-set view of the remote
// job-execution service and its REST client implementation.
//
// JobHandle and BackendHandle expose each remote facet (status, usage, queue
// position, ...) through its own accessor so a single unreadable facet never
// blocks its siblings. Accessors return ErrUnavailable when the remote record
// simply lacks the facet; the normalize package maps that to the documented
// default.
//
// NewFactory builds per-user Service clients that share one rate limiter, so
// the combined request rate to the remote API stays bounded no matter how
// many users are registered.
package quantum
