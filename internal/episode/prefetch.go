package episode

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vobble/studio/internal/audio"
	"github.com/vobble/studio/internal/mix"
	"github.com/vobble/studio/internal/script"
	"github.com/vobble/studio/internal/voice"
)

// sources wraps providers into clip sources for the mixing fold. When
// prefetching is enabled, synthesized speakers get a source backed by
// clips fetched concurrently ahead of the pass, reattached to their
// originating event order; recorded speakers always stay inline, both
// because takes are cheap and because the take cursor is
// order-dependent.
func (g *Generator) sources(ctx context.Context, events []script.Event, providers map[string]voice.Provider) map[string]mix.Source {
	out := make(map[string]mix.Source, len(providers))
	for sp, p := range providers {
		out[sp] = p
	}

	if g.cfg.Prefetch <= 1 {
		return out
	}

	fetched := prefetch(ctx, events, providers, g.cfg.Prefetch)
	for sp, queue := range fetched {
		out[sp] = queue
	}
	return out
}

// clipResult is one prefetched synthesis outcome.
type clipResult struct {
	clip *audio.Clip
	err  error
}

// fetchedQueue replays a speaker's prefetched clips in script order.
// The mixing fold is sequential, so no locking is needed at replay
// time; the mutex only guards failure after exhaustion.
type fetchedQueue struct {
	mu      sync.Mutex
	results []clipResult
	pos     int
}

// ProduceClip implements mix.Source by popping the next prefetched
// result for this speaker.
func (q *fetchedQueue) ProduceClip(context.Context, string) (*audio.Clip, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pos >= len(q.results) {
		return nil, fmt.Errorf("prefetch queue exhausted")
	}
	r := q.results[q.pos]
	q.pos++
	return r.clip, r.err
}

// prefetch synthesizes every network-bound event concurrently, bounded
// by limit, and groups the results per speaker in event order.
// Per-line failures are carried as values so the mixing fold can apply
// its normal skip handling; ordering is unaffected by completion order
// because each result lands at its event's slot.
func prefetch(ctx context.Context, events []script.Event, providers map[string]voice.Provider, limit int) map[string]*fetchedQueue {
	results := make([]clipResult, len(events))
	synth := make([]int, 0, len(events))
	for i, ev := range events {
		if p, ok := providers[ev.Speaker]; ok && p.Kind().Synthesized() {
			synth = append(synth, i)
		}
	}
	if len(synth) == 0 {
		return nil
	}

	log.Debug("prefetching synthesized clips", "events", len(synth), "parallelism", limit)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(limit)
	for _, i := range synth {
		ev := events[i]
		idx := i
		grp.Go(func() error {
			clip, err := providers[ev.Speaker].ProduceClip(grpCtx, ev.Text)
			results[idx] = clipResult{clip: clip, err: err}
			return nil
		})
	}
	// Goroutines never return errors; Wait only delays until all
	// fetches (or the run cancellation) complete.
	_ = grp.Wait()

	queues := make(map[string]*fetchedQueue)
	for _, i := range synth {
		sp := events[i].Speaker
		if queues[sp] == nil {
			queues[sp] = &fetchedQueue{}
		}
		queues[sp].results = append(queues[sp].results, results[i])
	}
	return queues
}
