package handler

import (
	"net/http"

	"github.com/mcoot/scorekeeper/internal/api/request"
	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/registry"
)

// UserHandler handles registration, score submission and registry reads
type UserHandler struct {
	registry *registry.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(reg *registry.Service) *UserHandler {
	return &UserHandler{
		registry: reg,
	}
}

// Register handles POST /register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r.Body, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body: name must be a string"))
		return
	}

	rec, err := h.registry.Register(r.Context(), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewUserResponse(rec))
}

// SubmitScore handles POST /score
func (h *UserHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := request.Decode(r.Body, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body: score must be a number"))
		return
	}
	if req.Score == nil {
		WriteError(w, NewInvalidRequestError("score is required"))
		return
	}

	rec, err := h.registry.SubmitScore(r.Context(), req.Name, model.Mode(req.Mode), *req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewUserResponse(rec))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.registry.ListUsernames())
}

// Dump handles GET /dump
func (h *UserHandler) Dump(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.registry.Snapshot())
}

// Health handles GET /health
func (h *UserHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Users: h.registry.Len()})
}
