// Package schema upgrades persisted user records to the current shape.
//
// Known shapes:
//
//	v0: {scores, totalGames, totalEquations}
//	v1: {sprintScores, totalGames, totalEquations}
//	v2: {sprintScores, blitzScores, totalGames, totalEquations}
//
// Every record passes through the same ordered step list whether it is being
// loaded from the ledger or touched again by a registration.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/scorekeeper/internal/model"
)

// CurrentVersion is the record shape written by this build
const CurrentVersion = 2

// Persisted field names
const (
	fieldLegacyScores   = "scores"
	fieldSprintScores   = "sprintScores"
	fieldBlitzScores    = "blitzScores"
	fieldTotalGames     = "totalGames"
	fieldTotalEquations = "totalEquations"
)

var emptyArray = json.RawMessage("[]")
var zero = json.RawMessage("0")

// fields is a record body keyed by field name
type fields map[string]json.RawMessage

// step upgrades a record to Version. apply reports whether it changed anything
// and must be a no-op on records already at or past Version.
type step struct {
	Version int
	Name    string
	apply   func(f fields) bool
}

var steps = []step{
	{Version: 1, Name: "rename scores to sprintScores", apply: renameLegacyScores},
	{Version: 2, Name: "backfill missing fields", apply: backfillFields},
}

func renameLegacyScores(f fields) bool {
	legacy, hasLegacy := f[fieldLegacyScores]
	if !hasLegacy {
		return false
	}
	delete(f, fieldLegacyScores)
	if present(f, fieldSprintScores) {
		return true
	}
	f[fieldSprintScores] = legacy
	return true
}

func backfillFields(f fields) bool {
	changed := false
	for _, name := range []string{fieldSprintScores, fieldBlitzScores} {
		if !present(f, name) {
			f[name] = emptyArray
			changed = true
		}
	}
	for _, name := range []string{fieldTotalGames, fieldTotalEquations} {
		if !present(f, name) {
			f[name] = zero
			changed = true
		}
	}
	return changed
}

// present treats an explicit null the same as a missing field
func present(f fields, name string) bool {
	v, ok := f[name]
	return ok && string(v) != "null"
}

// Version reports which historical shape a raw record has
func Version(raw json.RawMessage) (int, error) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, fmt.Errorf("%w: record is not a JSON object", model.ErrIOFailure)
	}
	switch {
	case present(f, fieldBlitzScores):
		return 2, nil
	case present(f, fieldSprintScores):
		return 1, nil
	default:
		return 0, nil
	}
}

// Normalize decodes a persisted record of any known shape into the current
// shape. changed reports whether the stored form differs from what would be
// written back, in which case the caller should re-persist it.
func Normalize(name string, raw json.RawMessage) (rec model.UserRecord, changed bool, err error) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return model.UserRecord{}, false, fmt.Errorf("%w: record %q is not a JSON object", model.ErrIOFailure, name)
	}

	for _, st := range steps {
		if st.apply(f) {
			changed = true
		}
	}

	rec = model.UserRecord{Name: name}
	targets := map[string]any{
		fieldSprintScores:   &rec.SprintScores,
		fieldBlitzScores:    &rec.BlitzScores,
		fieldTotalGames:     &rec.TotalGames,
		fieldTotalEquations: &rec.TotalEquations,
	}
	for key, value := range f {
		target, known := targets[key]
		if !known {
			// Unknown fields are not carried forward
			changed = true
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			return model.UserRecord{}, false, fmt.Errorf("%w: record %q field %s: %w", model.ErrIOFailure, name, key, err)
		}
	}
	return rec, changed, nil
}

// NormalizeRecord applies the same backfill to an in-memory record
func NormalizeRecord(rec model.UserRecord) (model.UserRecord, bool) {
	changed := false
	if rec.SprintScores == nil {
		rec.SprintScores = []float64{}
		changed = true
	}
	if rec.BlitzScores == nil {
		rec.BlitzScores = []float64{}
		changed = true
	}
	return rec, changed
}

// Steps lists the migration steps in order, for logging
func Steps() []string {
	names := make([]string, len(steps))
	for i, st := range steps {
		names[i] = fmt.Sprintf("v%d: %s", st.Version, st.Name)
	}
	return names
}
