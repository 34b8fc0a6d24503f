package ingest

import (
	"context"
	"log/slog"
	"sync"

	"jobingest/internal/domain"
	"jobingest/internal/filterconfig"
	"jobingest/internal/relevance"
)

// PostingSink is the capability C6 (the adapter) exposes to fetchers: take
// one RELEVANT/NEEDS_REVIEW raw posting and persist it, returning whether
// a row was inserted or updated (false when it was skipped as a duplicate).
type PostingSink interface {
	Process(ctx context.Context, kind domain.SourceKind, src domain.SourceDescriptor, raw domain.RawPosting) (saved bool, err error)
}

const innerPoolConcurrency = 5

// RunPostingPool iterates postings with bounded concurrency (§4.5, §5):
// record every provider id before filtering, assess relevance, and dispatch
// RELEVANT/NEEDS_REVIEW postings to sink. Per-posting errors are counted
// and never abort the batch.
func RunPostingPool(ctx context.Context, kind domain.SourceKind, src domain.SourceDescriptor, postings []domain.RawPosting, cfg *filterconfig.FilterConfig, log *slog.Logger, sink PostingSink) Result {
	res := Result{FoundProviderIDs: make(map[string]struct{}, len(postings))}

	valid := make([]domain.RawPosting, 0, len(postings))
	for _, p := range postings {
		if p.ProviderPostingID == "" {
			if log != nil {
				log.Warn("discarding posting with no provider id", "fetcher", kind, "sourceName", src.DisplayName)
			}
			continue
		}
		res.FoundProviderIDs[p.ProviderPostingID] = struct{}{}
		valid = append(valid, p)
	}
	res.JobsFound = len(valid)

	var (
		mu          sync.Mutex
		firstErrMsg string
	)
	recordErr := func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		res.JobsErrored++
		if firstErrMsg == "" {
			firstErrMsg = msg
		}
	}
	recordRelevant := func() {
		mu.Lock()
		res.JobsRelevant++
		mu.Unlock()
	}
	recordProcessed := func() {
		mu.Lock()
		res.JobsProcessed++
		mu.Unlock()
	}

	workCh := make(chan domain.RawPosting)
	var wg sync.WaitGroup
	wg.Add(innerPoolConcurrency)
	for i := 0; i < innerPoolConcurrency; i++ {
		go func() {
			defer wg.Done()
			for p := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				assessment := relevance.Assess(p, cfg, log)
				if assessment.Decision == relevance.Irrelevant {
					continue
				}

				p.DeterminedRegion = assessment.Region
				p.DeterminedDecision = string(assessment.Decision)
				p.DeterminedReview = assessment.Decision == relevance.NeedsReview
				recordRelevant()

				saved, err := sink.Process(ctx, kind, src, p)
				if err != nil {
					if log != nil {
						log.Error("posting processing failed", "fetcher", kind, "jobId", p.ProviderPostingID, "error", err)
					}
					recordErr(err.Error())
					continue
				}
				if saved {
					recordProcessed()
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, p := range valid {
			select {
			case <-ctx.Done():
				return
			case workCh <- p:
			}
		}
	}()

	wg.Wait()

	res.ErrorMessage = firstErrMsg
	return res
}
