package report

import (
	"github.com/dstanchev/guardrail-eval/internal/models"
	"github.com/rs/zerolog"
)

const sampleLimit = 10

type Summary struct {
	Total     int     `json:"total"`
	Blocked   int     `json:"blocked"`
	Allowed   int     `json:"allowed"`
	Errored   int     `json:"errored"`
	Evaluated int     `json:"evaluated"`
	BlockRate float64 `json:"block_rate"`
	AllowRate float64 `json:"allow_rate"`
}

type CategoryStat struct {
	Name    string `json:"name"`
	Blocked int    `json:"blocked"`
	Allowed int    `json:"allowed"`
}

func (c CategoryStat) Total() int { return c.Blocked + c.Allowed }

func (c CategoryStat) BlockRate() float64 {
	return percentage(c.Blocked, c.Total())
}

func (c CategoryStat) AllowRate() float64 {
	return percentage(c.Allowed, c.Total())
}

// Report is the aggregated view of one evaluation run. Category stats are
// derived fresh on every aggregation, never stored alongside the result set.
type Report struct {
	Summary               Summary                `json:"summary"`
	Categories            []CategoryStat         `json:"categories"`
	SampleBlocked         []models.BlockedPrompt `json:"sample_blocked"`
	SampleCriticalAllowed []models.AllowedPrompt `json:"sample_critical_allowed"`
}

type Aggregator struct {
	logger *zerolog.Logger
}

func NewAggregator(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate computes summary counts, per-category block/allow rates and the
// report samples. Errored entries count toward the total but are excluded
// from every percentage denominator and from category attribution.
func (a *Aggregator) Aggregate(results models.ResultSet) Report {
	summary := Summary{
		Total:     results.Total(),
		Blocked:   len(results.Blocked),
		Allowed:   len(results.Allowed),
		Errored:   len(results.Errored),
		Evaluated: results.Evaluated(),
	}
	summary.BlockRate = percentage(summary.Blocked, summary.Evaluated)
	summary.AllowRate = percentage(summary.Allowed, summary.Evaluated)

	report := Report{
		Summary:               summary,
		Categories:            categoryStats(results),
		SampleBlocked:         sampleBlocked(results.Blocked),
		SampleCriticalAllowed: sampleCriticalAllowed(results.Allowed),
	}

	a.logger.Info().
		Int("total", summary.Total).
		Int("blocked", summary.Blocked).
		Int("allowed", summary.Allowed).
		Int("errors", summary.Errored).
		Float64("block_rate", summary.BlockRate).
		Msg("aggregation complete")

	return report
}

// categoryStats walks blocked entries then allowed entries, keeping
// categories in first-seen order.
func categoryStats(results models.ResultSet) []CategoryStat {
	index := make(map[string]int)
	var stats []CategoryStat

	at := func(category string) *CategoryStat {
		if i, ok := index[category]; ok {
			return &stats[i]
		}
		index[category] = len(stats)
		stats = append(stats, CategoryStat{Name: category})
		return &stats[len(stats)-1]
	}

	for _, entry := range results.Blocked {
		at(entry.Category).Blocked++
	}
	for _, entry := range results.Allowed {
		at(entry.Category).Allowed++
	}

	return stats
}

func sampleBlocked(blocked []models.BlockedPrompt) []models.BlockedPrompt {
	if len(blocked) > sampleLimit {
		blocked = blocked[:sampleLimit]
	}
	return blocked
}

// sampleCriticalAllowed picks allowed prompts that should likely have been
// blocked: the first N with HIGH or CRITICAL severity.
func sampleCriticalAllowed(allowed []models.AllowedPrompt) []models.AllowedPrompt {
	var samples []models.AllowedPrompt
	for _, entry := range allowed {
		if entry.Severity != models.SeverityHigh && entry.Severity != models.SeverityCritical {
			continue
		}
		samples = append(samples, entry)
		if len(samples) == sampleLimit {
			break
		}
	}
	return samples
}

// percentage guards the empty denominator: no evaluated entries means 0, not
// NaN and not a panic.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
