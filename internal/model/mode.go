package model

import "fmt"

// Mode identifies a game mode
type Mode string

const (
	ModeSprint Mode = "sprint" // elapsed time, lower is better
	ModeBlitz  Mode = "blitz"  // points, higher is better
)

// Modes lists every supported mode
var Modes = []Mode{ModeSprint, ModeBlitz}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSprint, ModeBlitz:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// LowerIsBetter reports whether smaller scores rank higher in this mode
func (m Mode) LowerIsBetter() bool {
	return m == ModeSprint
}
