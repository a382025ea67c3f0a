package engine

import (
	"fmt"

	"github.com/aristath/precept/internal/modules/prefill/domain"
	"github.com/aristath/precept/internal/modules/refdata"
)

// MatchPattern mines the client's execution history for a precedent in the
// same size and volatility bucket. Only exact bucket matches count; there
// is no fallback to looser filters, an order outside the bucket says
// nothing about this one. Returns nil when the client has no matching
// history at all.
func MatchPattern(ctx domain.Context, orders []refdata.HistoricalOrder, cfg Config) *domain.PatternResult {
	bucket := sizeBucket(ctx.SizeVsADV, cfg)

	matches := make([]refdata.HistoricalOrder, 0, len(orders))
	for _, o := range orders {
		if o.ClientID == ctx.ClientID && o.SizeBucket == bucket && o.VolatilityBucket == ctx.VolatilityBucket {
			matches = append(matches, o)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	res := &domain.PatternResult{
		SizeBucket:   bucket,
		SupportCount: len(matches),
	}

	res.Algo = modalValue(matches, func(o refdata.HistoricalOrder) string { return o.AlgoUsed })
	if res.Algo != "" {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("Client historically prefers %s (%d matches, size bucket=%s, vol=%s)",
				res.Algo, res.SupportCount, bucket, ctx.VolatilityBucket))
	}

	res.Aggression = modalValue(matches, func(o refdata.HistoricalOrder) string { return o.AggressionLevel })
	if res.Aggression != "" {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("Historical aggression for this context: %s", res.Aggression))
	}

	return res
}

func sizeBucket(sizeVsADV float64, cfg Config) string {
	if sizeVsADV < cfg.SizeSmallMax {
		return "small"
	}
	if sizeVsADV < cfg.SizeMediumMax {
		return "medium"
	}
	return "large"
}

// modalValue returns the most frequent non-empty value of key across the
// orders. Count ties go to the value seen most recently; an exact tie on
// recency falls back to lexicographic order so the result never depends on
// map iteration.
func modalValue(orders []refdata.HistoricalOrder, key func(refdata.HistoricalOrder) string) string {
	type tally struct {
		count  int
		latest int64
	}
	tallies := make(map[string]*tally)
	for _, o := range orders {
		k := key(o)
		if k == "" {
			continue
		}
		t, ok := tallies[k]
		if !ok {
			t = &tally{}
			tallies[k] = t
		}
		t.count++
		if o.ExecutedAt > t.latest {
			t.latest = o.ExecutedAt
		}
	}

	var (
		best  string
		bestT *tally
	)
	for k, t := range tallies {
		switch {
		case bestT == nil,
			t.count > bestT.count,
			t.count == bestT.count && t.latest > bestT.latest,
			t.count == bestT.count && t.latest == bestT.latest && k < best:
			best = k
			bestT = t
		}
	}
	return best
}
