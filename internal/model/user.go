package model

import "slices"

// UserRecord is a registered user's score history.
// The name is the ledger document key and is not part of the persisted body.
type UserRecord struct {
	Name           string    `json:"-"`
	SprintScores   []float64 `json:"sprintScores"`
	BlitzScores    []float64 `json:"blitzScores"`
	TotalGames     int       `json:"totalGames"`
	TotalEquations int       `json:"totalEquations"` // reserved, never mutated
}

// NewUserRecord returns an empty record for name
func NewUserRecord(name string) UserRecord {
	return UserRecord{
		Name:         name,
		SprintScores: []float64{},
		BlitzScores:  []float64{},
	}
}

// Clone returns a deep copy of the record
func (u UserRecord) Clone() UserRecord {
	c := u
	c.SprintScores = cloneScores(u.SprintScores)
	c.BlitzScores = cloneScores(u.BlitzScores)
	return c
}

// Scores returns the score sequence for mode
func (u UserRecord) Scores(mode Mode) []float64 {
	switch mode {
	case ModeSprint:
		return u.SprintScores
	case ModeBlitz:
		return u.BlitzScores
	default:
		return nil
	}
}

// AddScore appends value to the sequence for mode and counts the game
func (u *UserRecord) AddScore(mode Mode, value float64) {
	switch mode {
	case ModeSprint:
		u.SprintScores = append(u.SprintScores, value)
	case ModeBlitz:
		u.BlitzScores = append(u.BlitzScores, value)
	default:
		return
	}
	u.TotalGames++
}

func cloneScores(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return slices.Clone(s)
}

// LedgerDocument is the full set of user records keyed by name
type LedgerDocument map[string]UserRecord

// Clone returns a deep copy of the document
func (d LedgerDocument) Clone() LedgerDocument {
	out := make(LedgerDocument, len(d))
	for name, rec := range d {
		out[name] = rec.Clone()
	}
	return out
}

// RankEntry is one row of a leaderboard
type RankEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
