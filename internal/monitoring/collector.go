// Package monitoring derives operational metrics from stored score
// results. Metrics are computed from the store on demand rather than kept
// as in-process counters, so every replica reports the same numbers.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-engine/internal/model"
	"github.com/sells-group/credit-engine/internal/store"
)

// MetricsSnapshot holds a point-in-time view of scoring activity.
type MetricsSnapshot struct {
	// Counts within the lookback window.
	Total        int `json:"total"`
	TrainedModel int `json:"trained_model"`
	RuleBased    int `json:"rule_based"`
	HardFallback int `json:"hard_fallback"`
	Approved     int `json:"approved"`

	// Derived rates and aggregates.
	ApprovalRate float64 `json:"approval_rate"`
	FallbackRate float64 `json:"fallback_rate"`
	AvgScore     float64 `json:"avg_score"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers scoring metrics from the result store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	since := snap.CollectedAt.Add(-time.Duration(lookbackHours) * time.Hour)
	results, err := c.store.ListResults(ctx, store.ResultFilter{
		Since: since,
		Limit: 10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list results")
	}

	var scoreSum int
	for i := range results {
		r := &results[i].Result
		snap.Total++
		scoreSum += r.CreditScore
		if r.LoanApproved {
			snap.Approved++
		}
		switch r.Method {
		case model.MethodTrainedModel:
			snap.TrainedModel++
		case model.MethodRuleBased:
			snap.RuleBased++
		case model.MethodHardFallback:
			snap.HardFallback++
		}
	}

	if snap.Total > 0 {
		snap.ApprovalRate = float64(snap.Approved) / float64(snap.Total)
		snap.FallbackRate = float64(snap.HardFallback) / float64(snap.Total)
		snap.AvgScore = float64(scoreSum) / float64(snap.Total)
	}

	return snap, nil
}
