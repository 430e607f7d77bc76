package ipreputation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	name    string
	verdict Verdict
	err     error
	delay   time.Duration
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Check(ctx context.Context, ip string) (Verdict, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Verdict{}, s.err
	}
	return s.verdict, nil
}

func detectingSource(name string) *staticSource {
	return &staticSource{name: name, verdict: Verdict{Source: name, Detected: true, Reason: REASON_PROXY}}
}

func cleanSource(name string) *staticSource {
	return &staticSource{name: name, verdict: Verdict{Source: name}}
}

func TestAssessNoSources(t *testing.T) {
	scorer := NewScorer(ScorerConfig{})

	assessment := scorer.Assess(context.Background(), "198.51.100.7")
	assert.False(t, assessment.Suspected)
	assert.Equal(t, 0.0, assessment.Confidence)
	assert.Empty(t, assessment.Checks)
}

func TestAssessConfidenceShare(t *testing.T) {
	testCases := []struct {
		name               string
		sources            []Source
		expectedSuspected  bool
		expectedConfidence float64
		expectedChecks     int
	}{
		{
			name:               "all clean",
			sources:            []Source{cleanSource("a"), cleanSource("b")},
			expectedSuspected:  false,
			expectedConfidence: 0,
			expectedChecks:     2,
		},
		{
			name:               "one of two detects",
			sources:            []Source{detectingSource("a"), cleanSource("b")},
			expectedSuspected:  true,
			expectedConfidence: 50,
			expectedChecks:     2,
		},
		{
			name:               "single detecting source",
			sources:            []Source{detectingSource("a")},
			expectedSuspected:  true,
			expectedConfidence: 100,
			expectedChecks:     1,
		},
		{
			name:               "two of three detect",
			sources:            []Source{detectingSource("a"), detectingSource("b"), cleanSource("c")},
			expectedSuspected:  true,
			expectedConfidence: 100.0 * 2 / 3,
			expectedChecks:     3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scorer := NewScorer(ScorerConfig{}, tc.sources...)

			assessment := scorer.Assess(context.Background(), "198.51.100.7")
			assert.Equal(t, tc.expectedSuspected, assessment.Suspected)
			assert.InDelta(t, tc.expectedConfidence, assessment.Confidence, 0.001)
			assert.Len(t, assessment.Checks, tc.expectedChecks)
			assert.GreaterOrEqual(t, assessment.Confidence, 0.0)
			assert.LessOrEqual(t, assessment.Confidence, 100.0)
		})
	}
}

func TestAssessDropsFailingSources(t *testing.T) {
	failing := &staticSource{name: "broken", err: errors.New("service unavailable")}

	scorer := NewScorer(ScorerConfig{}, failing, detectingSource("working"))

	assessment := scorer.Assess(context.Background(), "198.51.100.7")
	require.Len(t, assessment.Checks, 1)
	assert.Equal(t, "working", assessment.Checks[0].Source)
	assert.True(t, assessment.Suspected)
	assert.Equal(t, 100.0, assessment.Confidence)
}

func TestAssessAllSourcesFail(t *testing.T) {
	// Reputation checks must never block an admission on their own.
	scorer := NewScorer(ScorerConfig{},
		&staticSource{name: "a", err: errors.New("timeout")},
		&staticSource{name: "b", err: errors.New("bad gateway")},
	)

	assessment := scorer.Assess(context.Background(), "198.51.100.7")
	assert.False(t, assessment.Suspected)
	assert.Equal(t, 0.0, assessment.Confidence)
	assert.Empty(t, assessment.Checks)
}

func TestAssessSourceTimeout(t *testing.T) {
	slow := &staticSource{
		name:    "slow",
		verdict: Verdict{Source: "slow", Detected: true},
		delay:   200 * time.Millisecond,
	}

	scorer := NewScorer(ScorerConfig{SourceTimeout: 10 * time.Millisecond}, slow, cleanSource("fast"))

	assessment := scorer.Assess(context.Background(), "198.51.100.7")
	require.Len(t, assessment.Checks, 1)
	assert.Equal(t, "fast", assessment.Checks[0].Source)
	assert.False(t, assessment.Suspected)
}
