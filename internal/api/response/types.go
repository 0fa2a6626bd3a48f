package response

import (
	"github.com/mcoot/scorekeeper/internal/model"
)

// User represents a user record in API responses
type User struct {
	Name           string    `json:"name"`
	SprintScores   []float64 `json:"sprintScores"`
	BlitzScores    []float64 `json:"blitzScores"`
	TotalGames     int       `json:"totalGames"`
	TotalEquations int       `json:"totalEquations"`
}

// UserFromModel converts a model.UserRecord to a response User
func UserFromModel(rec model.UserRecord) User {
	rec = rec.Clone()
	return User{
		Name:           rec.Name,
		SprintScores:   rec.SprintScores,
		BlitzScores:    rec.BlitzScores,
		TotalGames:     rec.TotalGames,
		TotalEquations: rec.TotalEquations,
	}
}

// UserResponse is the response for register and score submission
type UserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// NewUserResponse wraps a record in a successful UserResponse
func NewUserResponse(rec model.UserRecord) UserResponse {
	return UserResponse{Success: true, User: UserFromModel(rec)}
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
}
