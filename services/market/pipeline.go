package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tmscout-backend/lib/scrapers/pmanager"
	"tmscout-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/market")

// Scraper is the slice of the site client the pipeline drives.
type Scraper interface {
	Crawl(ctx context.Context, filter pmanager.SearchFilter, maxPages int) ([]string, error)
	Player(ctx context.Context, id string) (pmanager.Player, error)
	TeamPlayers(ctx context.Context, teamUrl string) ([]string, error)
}

type PipelineOptions struct {
	// Scenarios are crawled sequentially and their ids unioned, first
	// appearance wins the ordering.
	Scenarios []pmanager.SearchFilter
	// MaxPages caps each scenario's crawl, zero means DefaultMaxPages.
	MaxPages int
	// Workers bounds concurrent per-player extraction, zero means
	// DefaultWorkers.
	Workers int
	// Now stamps entries, nil means the pipeline clock.
	Now func() time.Time
}

const (
	DefaultMaxPages = 30
	DefaultWorkers  = 4
)

// Pipeline runs the full scrape: crawl scenarios, extract each player
// once, derive economics, persist.
type Pipeline struct {
	scraper Scraper
	store   *Store
	opts    PipelineOptions
}

func NewPipeline(scraper Scraper, store *Store, opts PipelineOptions) *Pipeline {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = timezone.Now
	}
	return &Pipeline{scraper: scraper, store: store, opts: opts}
}

type RunResult struct {
	// Ids is the size of the deduplicated crawl union.
	Ids int
	// Failed counts players whose extraction was skipped after a fetch
	// failure.
	Failed  int
	Entries []Entry
}

// Run executes one market pass. The store is written only when the run
// completes, a canceled or failed run leaves the previous dataset
// intact.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()

	ids, err := p.crawlScenarios(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "crawl failed")
		return RunResult{}, err
	}
	span.SetAttributes(attribute.Int("ids", len(ids)))

	entries, failed, err := p.extract(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction aborted")
		return RunResult{}, err
	}

	if err := p.store.UpsertPlayers(ctx, entries); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to merge players")
		return RunResult{}, err
	}
	if err := p.store.ReplaceMarket(ctx, entries); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to replace market")
		return RunResult{}, err
	}

	slog.InfoContext(ctx, "market run complete",
		"ids", len(ids), "entries", len(entries), "failed", failed)
	return RunResult{Ids: len(ids), Failed: failed, Entries: entries}, nil
}

// ScoutTeam extracts every player of a squad page and merges their
// attributes. Squad players aren't listings, so the market view is left
// alone.
func (p *Pipeline) ScoutTeam(ctx context.Context, teamUrl string) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline:ScoutTeam")
	defer span.End()
	span.SetAttributes(attribute.String("team_url", teamUrl))

	ids, err := p.scraper.TeamPlayers(ctx, teamUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list squad")
		return RunResult{}, err
	}

	entries, failed, err := p.extract(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction aborted")
		return RunResult{}, err
	}
	if err := p.store.UpsertPlayers(ctx, entries); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to merge players")
		return RunResult{}, err
	}

	slog.InfoContext(ctx, "team scout complete",
		"ids", len(ids), "entries", len(entries), "failed", failed)
	return RunResult{Ids: len(ids), Failed: failed, Entries: entries}, nil
}

func (p *Pipeline) crawlScenarios(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var union []string

	for _, scenario := range p.opts.Scenarios {
		ids, err := p.scraper.Crawl(ctx, scenario, p.opts.MaxPages)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			id = NormalizeId(id)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union, nil
}

// extract fans the ids out over a bounded worker pool. Each id is
// handed to exactly one worker, so a player page is fetched at most
// once per run. Per-player fetch failures are counted and skipped,
// context cancellation aborts the whole batch.
func (p *Pipeline) extract(ctx context.Context, ids []string) ([]Entry, int, error) {
	now := p.opts.Now()

	type slot struct {
		entry Entry
		ok    bool
	}
	slots := make([]slot, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				player, err := p.scraper.Player(ctx, ids[i])
				if err != nil {
					slog.WarnContext(ctx, "skipping player",
						"id", ids[i], "err", err)
					continue
				}
				slots[i] = slot{entry: EntryFromPlayer(player, now), ok: true}
			}
		}()
	}

feed:
	for i := range ids {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, 0, len(ids))
	failed := 0
	for _, s := range slots {
		if !s.ok {
			failed++
			continue
		}
		entries = append(entries, s.entry)
	}
	return entries, failed, nil
}
