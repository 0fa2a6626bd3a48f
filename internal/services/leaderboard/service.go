package leaderboard

import (
	"cmp"
	"slices"

	"github.com/mcoot/scorekeeper/internal/model"
)

const (
	// DefaultLimit is used when a caller does not ask for a specific size
	DefaultLimit = 10
	// DefaultMaxLimit caps the number of entries a single ranking may return
	DefaultMaxLimit = 100
)

// Source provides the records a ranking is computed from
type Source interface {
	Snapshot() model.LedgerDocument
}

// Service computes ranked views over the registry. It never mutates state.
type Service struct {
	source   Source
	maxLimit int
}

// New creates a leaderboard over source. A maxLimit <= 0 uses DefaultMaxLimit.
func New(source Source, maxLimit int) *Service {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Service{source: source, maxLimit: maxLimit}
}

// MaxLimit returns the largest ranking size served
func (s *Service) MaxLimit() int {
	return s.maxLimit
}

// Rank returns the best score per user for mode, best first.
// Sprint uses each user's lowest time, blitz each user's highest points.
// Users with no scores for mode are left out and equal scores order by name.
func (s *Service) Rank(mode model.Mode, limit int) ([]model.RankEntry, error) {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	limit = s.clamp(limit)

	doc := s.source.Snapshot()
	entries := make([]model.RankEntry, 0, len(doc))
	for name, rec := range doc {
		scores := rec.Scores(mode)
		if len(scores) == 0 {
			continue
		}
		entries = append(entries, model.RankEntry{Name: name, Score: best(mode, scores)})
	}

	slices.SortFunc(entries, func(a, b model.RankEntry) int {
		c := cmp.Compare(a.Score, b.Score)
		if !mode.LowerIsBetter() {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Service) clamp(limit int) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return min(limit, s.maxLimit)
}

func best(mode model.Mode, scores []float64) float64 {
	if mode.LowerIsBetter() {
		return slices.Min(scores)
	}
	return slices.Max(scores)
}
