package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	muted   = color.New(color.FgHiBlack)
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		if apiErr, ok := err.(*APIError); ok {
			errData["error"] = apiErr
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = danger.Fprint(o.errOut, "Error: ")
		_, _ = fmt.Fprintln(o.errOut, err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case UserResult:
		o.printUser(v.User)
	case Leaderboard:
		o.printLeaderboard(v)
	case UserList:
		o.printUserList(v)
	case Dump:
		o.printDump(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	Name           string    `json:"name"`
	SprintScores   []float64 `json:"sprintScores"`
	BlitzScores    []float64 `json:"blitzScores"`
	TotalGames     int       `json:"totalGames"`
	TotalEquations int       `json:"totalEquations"`
}

// UserResult is the response to register and score
type UserResult struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// RankEntry is one leaderboard row
type RankEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Leaderboard pairs a ranking with the mode it was requested for
type Leaderboard struct {
	Mode    string
	Entries []RankEntry
}

// MarshalJSON emits the ranking exactly as the server returned it
func (l Leaderboard) MarshalJSON() ([]byte, error) {
	if l.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Entries)
}

// UserList is the response to users
type UserList []string

// Record is one stored record in a dump
type Record struct {
	SprintScores   []float64 `json:"sprintScores"`
	BlitzScores    []float64 `json:"blitzScores"`
	TotalGames     int       `json:"totalGames"`
	TotalEquations int       `json:"totalEquations"`
}

// Dump is the full ledger keyed by name
type Dump map[string]Record

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatScores(scores []float64) string {
	if len(scores) == 0 {
		return muted.Sprint("none")
	}
	parts := make([]string, len(scores))
	for i, v := range scores {
		parts[i] = formatScore(v)
	}
	return strings.Join(parts, ", ")
}

func (o *Output) printScoreLine(label string, scores []float64, best func([]float64) float64) {
	_, _ = fmt.Fprintf(o.out, "%s %s", label, formatScores(scores))
	if len(scores) > 0 {
		_, _ = fmt.Fprintf(o.out, " (best %s)", success.Sprint(formatScore(best(scores))))
	}
	_, _ = fmt.Fprintln(o.out)
}

func (o *Output) printUser(u User) {
	_, _ = fmt.Fprintf(o.out, "User:   %s\n", accent.Sprint(u.Name))
	_, _ = fmt.Fprintf(o.out, "Games:  %d\n", u.TotalGames)
	o.printScoreLine("Sprint:", u.SprintScores, func(s []float64) float64 { return slices.Min(s) })
	o.printScoreLine("Blitz: ", u.BlitzScores, func(s []float64) float64 { return slices.Max(s) })
}

func (o *Output) printLeaderboard(l Leaderboard) {
	_, _ = accent.Fprintf(o.out, "%s leaderboard\n", strings.ToUpper(l.Mode))
	if len(l.Entries) == 0 {
		_, _ = muted.Fprintln(o.out, "  no scores yet")
		return
	}

	width := 0
	for _, e := range l.Entries {
		width = max(width, len(e.Name))
	}
	for i, e := range l.Entries {
		_, _ = fmt.Fprintf(o.out, "%3d. %-*s  %s\n", i+1, width, e.Name, formatScore(e.Score))
	}
}

func (o *Output) printUserList(users UserList) {
	if len(users) == 0 {
		_, _ = muted.Fprintln(o.out, "no users registered")
		return
	}
	for _, name := range users {
		_, _ = fmt.Fprintln(o.out, name)
	}
}

func (o *Output) printDump(d Dump) {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		if i > 0 {
			_, _ = fmt.Fprintln(o.out)
		}
		rec := d[name]
		o.printUser(User{
			Name:           name,
			SprintScores:   rec.SprintScores,
			BlitzScores:    rec.BlitzScores,
			TotalGames:     rec.TotalGames,
			TotalEquations: rec.TotalEquations,
		})
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.out, "Status: %s\n", success.Sprint(h.Status))
	_, _ = fmt.Fprintf(o.out, "Users:  %d\n", h.Users)
}
