// Package poller drives the fixed-interval usage polling loop and hands
// results to the UI through a single-slot mailbox.
package poller

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/metrics"
	"github.com/claudebar/claudebar/pkg/usage"
)

// Fetcher retrieves one usage snapshot. Implemented by claude.Client.
type Fetcher interface {
	Fetch(ctx context.Context, creds credentials.Credentials) (usage.Snapshot, error)
}

// CredentialSource yields the current credentials, or absent.
// Implemented by credentials.Store.
type CredentialSource interface {
	Load() (credentials.Credentials, bool)
}

// Recorder persists successful snapshots. Implemented by history.Store.
type Recorder interface {
	Append(ctx context.Context, snap usage.Snapshot) error
}

// Poller runs the polling loop. Exactly one goroutine executes polls, so
// overlapping requests cannot happen by construction: a ticker tick that
// fires mid-poll waits in the ticker's one-slot buffer and further ticks
// coalesce (skip policy). State flows out through Updates, a capacity-1
// channel where a fresh state displaces an undelivered stale one.
type Poller struct {
	fetcher  Fetcher
	creds    CredentialSource
	recorder Recorder
	interval time.Duration

	updates chan usage.State
	kick    chan struct{}

	last *usage.Snapshot
}

// New creates a poller. recorder may be nil to disable history.
func New(fetcher Fetcher, creds CredentialSource, recorder Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		fetcher:  fetcher,
		creds:    creds,
		recorder: recorder,
		interval: interval,
		updates:  make(chan usage.State, 1),
		kick:     make(chan struct{}, 1),
	}
}

// Updates returns the state mailbox. There is exactly one writer (the
// poll loop) and the UI is the only intended reader.
func (p *Poller) Updates() <-chan usage.State {
	return p.updates
}

// RefreshNow requests an immediate poll. Requests arriving while a poll
// is in flight collapse into one.
func (p *Poller) RefreshNow() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run executes the loop until ctx is cancelled. It polls once immediately
// so the UI is not blank for the first interval.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-p.kick:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce performs one independent attempt and publishes the resulting
// state. Errors never escalate beyond this tick.
func (p *Poller) pollOnce(ctx context.Context) {
	creds, ok := p.creds.Load()
	if !ok {
		// No credentials: no network access, and any previously shown
		// snapshot is withdrawn.
		p.last = nil
		metrics.PollsTotal.WithLabelValues(string(usage.ErrUnconfigured)).Inc()
		p.publish(usage.Unconfigured())
		return
	}

	snap, err := p.fetcher.Fetch(ctx, creds)
	if err != nil {
		var pe *usage.PollError
		if !errors.As(err, &pe) {
			pe = usage.NewPollError(usage.ErrNetwork, err)
		}
		log.Printf("poll failed: %v", pe)
		metrics.PollsTotal.WithLabelValues(string(pe.Kind)).Inc()
		p.publish(usage.Errored(pe, p.last))
		return
	}

	p.last = &snap
	metrics.PollsTotal.WithLabelValues("ok").Inc()
	metrics.LastPollTimestamp.Set(float64(snap.FetchedAt.Unix()))
	for _, id := range usage.Windows {
		metrics.PercentUsed.WithLabelValues(string(id)).Set(snap.Window(id).PercentUsed)
	}

	if p.recorder != nil {
		if err := p.recorder.Append(ctx, snap); err != nil {
			log.Printf("failed to record sample: %v", err)
		}
	}

	p.publish(usage.Ok(snap))
}

// publish replaces any undelivered state with the fresh one. The mailbox
// holds at most one value, so the reader always observes the latest state
// and never a backlog.
func (p *Poller) publish(st usage.State) {
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- st:
	default:
	}
}
