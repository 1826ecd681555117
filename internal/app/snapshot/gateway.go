package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"emberchat/internal/pkg/logx"
	"emberchat/internal/pkg/metrics"
)

// saveTimeout bounds a single store write so a slow backend can never
// stall the gateway loop across an interval.
const saveTimeout = 10 * time.Second

// Source produces snapshot documents on demand. The chat room implements it.
type Source interface {
	BuildSnapshot() *Document
}

// Gateway runs the write-behind persistence loop: interval autosaves plus
// checkpoint triggers requested by the room (after a ban, after enough
// accumulated messages). Store failures are logged and never propagate to
// message handling; the next scheduled attempt retries from scratch.
type Gateway struct {
	store    Store
	source   Source
	interval time.Duration

	trigger chan string
	stop    chan struct{}
	wg      sync.WaitGroup
	logger  zerolog.Logger
}

// NewGateway constructs a Gateway. A nil store is allowed: the process then
// runs purely in memory and every save attempt is logged as skipped.
func NewGateway(store Store, source Source, interval time.Duration) *Gateway {
	return &Gateway{
		store:    store,
		source:   source,
		interval: interval,
		trigger:  make(chan string, 8),
		stop:     make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "snapshot").Logger(),
	}
}

// Start launches the gateway loop.
func (g *Gateway) Start() {
	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				g.save("interval")

			case reason := <-g.trigger:
				g.save(reason)

			case <-g.stop:
				return
			}
		}
	}()
}

// Checkpoint requests an out-of-band save. Non-blocking: if the trigger
// queue is full a save is already pending and the request is dropped.
func (g *Gateway) Checkpoint(reason string) {
	select {
	case g.trigger <- reason:
	default:
	}
}

// Restore loads the most recent snapshot, or (nil, nil) when the store is
// absent or empty.
func (g *Gateway) Restore(ctx context.Context) (*Document, error) {
	if g.store == nil {
		return nil, nil
	}
	return g.store.Load(ctx)
}

// Flush performs a synchronous save, used for the shutdown checkpoint.
func (g *Gateway) Flush(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	return g.store.Save(ctx, g.source.BuildSnapshot())
}

// Stop terminates the loop, writes the final snapshot, and releases the store.
func (g *Gateway) Stop(ctx context.Context) {
	close(g.stop)
	g.wg.Wait()

	if err := g.Flush(ctx); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		g.logger.Error().Err(err).Msg("Final snapshot flush failed.")
	} else if g.store != nil {
		metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
		g.logger.Info().Msg("Final snapshot flushed.")
	}

	if g.store != nil {
		g.store.Close()
	}
}

// save captures the current state and writes it to the store. Failures are
// logged and counted; the in-memory state remains authoritative either way.
func (g *Gateway) save(reason string) {
	if g.store == nil {
		g.logger.Debug().Str("reason", reason).Msg("Snapshot store not configured, skipping save.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	doc := g.source.BuildSnapshot()

	if err := g.store.Save(ctx, doc); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		g.logger.Error().
			Err(err).
			Str("reason", reason).
			Msg("Snapshot save failed; continuing in memory until the next attempt.")
		return
	}

	metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
	g.logger.Info().
		Str("reason", reason).
		Int("identities", len(doc.Identities)).
		Int("messages", len(doc.Messages)).
		Msg("Snapshot saved.")
}
