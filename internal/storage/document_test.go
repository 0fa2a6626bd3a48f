package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/scorekeeper/internal/model"
)

func TestEncodeDocumentWritesEmptyArrays(t *testing.T) {
	data, err := EncodeDocument(model.LedgerDocument{
		"alice": {Name: "alice"},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"alice":{"sprintScores":[],"blitzScores":[],"totalGames":0,"totalEquations":0}}`, string(data))
}

func TestDecodeDocumentEmptyInput(t *testing.T) {
	for _, in := range []string{"", "  \n"} {
		doc, err := DecodeDocument([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, doc)
	}
}

func TestDecodeDocumentMalformed(t *testing.T) {
	for _, in := range []string{"{", "[]", "null", `"alice"`, `{"alice":`} {
		_, err := DecodeDocument([]byte(in))
		assert.ErrorIs(t, err, model.ErrIOFailure, "input %q", in)
	}
}

func TestDecodeDocumentKeepsRawRecords(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"bob":{"scores":[1,2]}}`))
	require.NoError(t, err)

	require.Contains(t, doc, "bob")
	assert.JSONEq(t, `{"scores":[1,2]}`, string(doc["bob"]))
}
