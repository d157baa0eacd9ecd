package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/config"
	"github.com/quantumtrack/quantumtrack/internal/metrics"
	"github.com/quantumtrack/quantumtrack/internal/normalize"
	"github.com/quantumtrack/quantumtrack/internal/quantum"
	"github.com/quantumtrack/quantumtrack/internal/registry"
)

// EventTypeStatusChange labels every event the notifier publishes.
const EventTypeStatusChange = "job_status_change"

// Event is one observed job-status transition.
type Event struct {
	Type      string `json:"type"`
	User      string `json:"user"`
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Backend   string `json:"backend"`
	Timestamp string `json:"timestamp"`
}

// Publisher delivers an event to all current subscribers. Per-subscriber
// delivery failures are the publisher's concern and never surface here.
type Publisher interface {
	Publish(v interface{})
}

// Notifier polls every registered user's recent jobs on a fixed interval,
// diffs each job's status against the retained State and publishes a change
// event for every transition.
type Notifier struct {
	registry *registry.Registry
	factory  quantum.Factory
	state    *State
	pub      Publisher
	interval time.Duration
	window   int

	now func() time.Time // injectable for deterministic tests
}

// New wires a Notifier from its collaborators and the notify configuration.
func New(reg *registry.Registry, factory quantum.Factory, state *State, pub Publisher, cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		registry: reg,
		factory:  factory,
		state:    state,
		pub:      pub,
		interval: cfg.Interval,
		window:   cfg.Window,
		now:      time.Now,
	}
}

// Run executes one poll cycle immediately, then one per interval until ctx
// is cancelled. A cycle never takes the loop down: every failure inside it
// is logged and swallowed.
func (n *Notifier) Run(ctx context.Context) {
	t := time.NewTicker(n.interval)
	defer t.Stop()

	n.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("notifier: stopped")
			return
		case <-t.C:
			n.cycle(ctx)
		}
	}
}

// cycle polls every registered user once. Each user is an isolated fault
// domain: a failed credential or query skips that user only.
func (n *Notifier) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notifier: poll cycle panicked", "panic", r)
		}
	}()

	metrics.NotifierCycles.Inc()
	for _, user := range n.registry.All() {
		if ctx.Err() != nil {
			return
		}
		if err := n.pollUser(ctx, user); err != nil {
			slog.Warn("notifier: user poll failed", "user", user.Name, "error", err)
		}
	}
}

func (n *Notifier) pollUser(ctx context.Context, user config.User) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll panicked: %v", r)
		}
	}()

	jobs, err := n.factory(user).Jobs(ctx, quantum.JobFilter{Limit: n.window})
	if err != nil {
		return err
	}

	for _, job := range jobs {
		jobID, status, backend := normalize.Identity(job)
		if !n.state.Observe(jobID, status) {
			continue
		}
		n.pub.Publish(Event{
			Type:      EventTypeStatusChange,
			User:      user.Name,
			JobID:     jobID,
			Status:    status,
			Backend:   backend,
			Timestamp: n.now().Format(time.RFC3339),
		})
		metrics.EventsPublished.Inc()
	}
	return nil
}
