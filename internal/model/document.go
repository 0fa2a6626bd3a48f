package model

import "encoding/json"

// RawDocument is a ledger document as loaded, before schema migration.
// Each value is one persisted record body of any historical shape.
type RawDocument map[string]json.RawMessage
