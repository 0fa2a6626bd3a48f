package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/scorekeeper/internal/model"
)

// EncodeDocument serializes a ledger document. Records with nil sequences are
// written as empty arrays.
func EncodeDocument(doc model.LedgerDocument) ([]byte, error) {
	out := make(map[string]model.UserRecord, len(doc))
	for name, rec := range doc {
		out[name] = rec.Clone()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %w", model.ErrIOFailure, err)
	}
	return data, nil
}

// DecodeDocument parses stored bytes into raw records. Empty input is an empty document.
func DecodeDocument(data []byte) (model.RawDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.RawDocument{}, nil
	}

	var doc model.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed document: %w", model.ErrIOFailure, err)
	}
	// A literal "null" decodes without error
	if doc == nil {
		return nil, fmt.Errorf("%w: malformed document: not a JSON object", model.ErrIOFailure)
	}
	return doc, nil
}

// IOError wraps a backend error as an i/o failure
func IOError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrIOFailure, op, err)
}
