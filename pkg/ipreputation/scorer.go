package ipreputation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DEFAULT_SOURCE_TIMEOUT = 3 * time.Second

// Source is one external IP reputation provider.
type Source interface {
	Name() string
	Check(ctx context.Context, ip string) (Verdict, error)
}

type ScorerConfig struct {
	// Upper bound for each individual source call, so one hanging provider
	// cannot stall the admission path.
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout"`
}

// Scorer fans an IP out to all configured sources and merges the verdicts.
type Scorer struct {
	sources       []Source
	sourceTimeout time.Duration
}

func NewScorer(config ScorerConfig, sources ...Source) *Scorer {
	timeout := config.SourceTimeout
	if timeout <= 0 {
		timeout = DEFAULT_SOURCE_TIMEOUT
	}
	return &Scorer{
		sources:       sources,
		sourceTimeout: timeout,
	}
}

// Assess queries every source concurrently and never fails: sources that error
// or time out are dropped from the result, and with no answering source the
// assessment is the zero value (not suspected, confidence 0).
func (s *Scorer) Assess(ctx context.Context, ip string) Assessment {
	if len(s.sources) == 0 {
		return Assessment{Checks: []Verdict{}}
	}

	results := make([]*Verdict, len(s.sources))
	var wg sync.WaitGroup
	for i, source := range s.sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
			defer cancel()

			verdict, err := source.Check(callCtx, ip)
			if err != nil {
				slog.Warn("IP reputation check failed", slog.String("source", source.Name()), slog.String("ip", ip), slog.String("error", err.Error()))
				return
			}
			results[i] = &verdict
		}(i, source)
	}
	wg.Wait()

	assessment := Assessment{Checks: []Verdict{}}
	detected := 0
	for _, verdict := range results {
		if verdict == nil {
			continue
		}
		assessment.Checks = append(assessment.Checks, *verdict)
		if verdict.Detected {
			detected++
		}
	}

	if len(assessment.Checks) > 0 {
		assessment.Suspected = detected > 0
		assessment.Confidence = float64(detected) / float64(len(assessment.Checks)) * 100
	}
	return assessment
}
