package request

import (
	"encoding/json"
	"io"
)

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Name string `json:"name"`
}

// SubmitScoreRequest is the request body for submitting a game result.
// Score is a pointer so a missing score is distinguishable from zero.
type SubmitScoreRequest struct {
	Name  string   `json:"name"`
	Mode  string   `json:"mode"`
	Score *float64 `json:"score"`
}

// Decode reads a single JSON value from body into dst. Type mismatches such
// as a numeric name or a string score are decode errors.
func Decode(body io.Reader, dst any) error {
	return json.NewDecoder(body).Decode(dst)
}
