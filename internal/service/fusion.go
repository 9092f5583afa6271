package service

import (
	"context"
	"sort"
	"time"

	"moviechat/internal/config"
	"moviechat/internal/logger"
	"moviechat/internal/model"
	"moviechat/internal/tools"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FilterProgress is called once per filter as its execution finishes. Calls
// are serialized on the goroutine that called Fuse.
type FilterProgress func(outcome model.FilterOutcome)

// FusionEngine runs a decision's filters concurrently and intersects their
// result lists on a normalized movie key
type FusionEngine struct {
	registry      *tools.Registry
	filterTimeout time.Duration
	key           func(model.MovieRecord) string
	logger        *zap.Logger
}

// NewFusionEngine creates a fusion engine
func NewFusionEngine(registry *tools.Registry, cfg config.FusionConfig, log *zap.Logger) *FusionEngine {
	key := model.MovieRecord.TitleKey
	if cfg.Key == config.FusionKeyTitleYear {
		key = model.MovieRecord.TitleYearKey
	}

	return &FusionEngine{
		registry:      registry,
		filterTimeout: cfg.FilterTimeout,
		key:           key,
		logger:        logger.OrNop(log),
	}
}

type execution struct {
	index   int
	records []model.MovieRecord
	err     error
}

// Fuse executes filters and combines their results. A failed filter
// contributes nothing instead of aborting the fusion.
func (f *FusionEngine) Fuse(ctx context.Context, filters []model.FilterSpec, progress FilterProgress) model.FusedResult {
	results := f.executeAll(ctx, filters, progress)

	outcomes := make([]model.FilterOutcome, len(filters))
	contributions := make([][]model.MovieRecord, 0, len(filters))
	anyFailed := false
	anyRecords := false

	for i, res := range results {
		outcomes[i] = model.FilterOutcome{
			Filter: filters[i],
			Count:  len(res.records),
			Failed: res.err != nil,
			Err:    res.err,
		}
		if res.err != nil {
			anyFailed = true
			continue
		}
		if len(res.records) > 0 {
			anyRecords = true
		}
		contributions = append(contributions, res.records)
	}

	fused := model.FusedResult{
		Records:  f.intersect(contributions),
		Filters:  filters,
		Outcomes: outcomes,
	}

	switch {
	case len(fused.Records) > 0:
		fused.Status = model.FusionMatched
	case !anyRecords && anyFailed:
		fused.Status = model.FusionUpstreamError
	case !anyRecords:
		fused.Status = model.FusionNoResults
	default:
		fused.Status = model.FusionNoOverlap
	}

	fusionOutcomesTotal.WithLabelValues(string(fused.Status)).Inc()
	f.logger.Debug("fusion finished",
		zap.Strings("filters", model.FilterStrings(filters)),
		zap.String("status", string(fused.Status)),
		zap.Int("records", len(fused.Records)),
	)

	return fused
}

// executeAll fans the filters out and waits for every one of them
func (f *FusionEngine) executeAll(ctx context.Context, filters []model.FilterSpec, progress FilterProgress) []execution {
	results := make([]execution, len(filters))
	done := make(chan execution, len(filters))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range filters {
		i, spec := i, spec
		g.Go(func() error {
			done <- f.execute(gctx, i, spec)
			// Individual failures are recorded, never returned
			return nil
		})
	}

	for range filters {
		res := <-done
		results[res.index] = res
		if progress != nil {
			progress(model.FilterOutcome{
				Filter: filters[res.index],
				Count:  len(res.records),
				Failed: res.err != nil,
				Err:    res.err,
			})
		}
	}
	_ = g.Wait()

	return results
}

func (f *FusionEngine) execute(ctx context.Context, index int, spec model.FilterSpec) execution {
	if f.filterTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.filterTimeout)
		defer cancel()
	}

	start := time.Now()
	records, err := f.registry.Execute(ctx, spec)
	toolDurationSeconds.WithLabelValues(string(spec.Tool)).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		toolExecutionsTotal.WithLabelValues(string(spec.Tool), "error").Inc()
		f.logger.Warn("filter failed",
			zap.String("filter", spec.String()),
			zap.Error(err),
		)
		return execution{index: index, err: err}
	case len(records) == 0:
		toolExecutionsTotal.WithLabelValues(string(spec.Tool), "empty").Inc()
	default:
		toolExecutionsTotal.WithLabelValues(string(spec.Tool), "ok").Inc()
	}

	return execution{index: index, records: records}
}

// intersect keeps the records present in every list, in the order of the
// smallest list. Membership is decided on the fusion key; each store row is
// emitted once. A single list is returned as is.
func (f *FusionEngine) intersect(lists [][]model.MovieRecord) []model.MovieRecord {
	out := []model.MovieRecord{}
	switch len(lists) {
	case 0:
		return out
	case 1:
		return append(out, lists[0]...)
	}

	ordered := make([][]model.MovieRecord, len(lists))
	copy(ordered, lists)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) < len(ordered[j])
	})

	others := make([]map[string]struct{}, 0, len(ordered)-1)
	for _, list := range ordered[1:] {
		set := make(map[string]struct{}, len(list))
		for _, m := range list {
			set[f.key(m)] = struct{}{}
		}
		others = append(others, set)
	}

	emitted := make(map[int64]struct{}, len(ordered[0]))
	for _, m := range ordered[0] {
		if !inAll(f.key(m), others) {
			continue
		}
		// Rows without a store id cannot be told apart, so they are all kept
		if m.ID != 0 {
			if _, dup := emitted[m.ID]; dup {
				continue
			}
			emitted[m.ID] = struct{}{}
		}
		out = append(out, m)
	}

	return out
}

func inAll(key string, sets []map[string]struct{}) bool {
	for _, set := range sets {
		if _, ok := set[key]; !ok {
			return false
		}
	}
	return true
}
