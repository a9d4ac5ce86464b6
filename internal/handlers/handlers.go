package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"signalnoise/internal/board"
	"signalnoise/internal/models"
)

const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	board *board.Board
}

// New creates a new Handlers instance.
func New(b *board.Board) *Handlers {
	return &Handlers{board: b}
}

// Routes registers the task API on r. Paths are relative to the mount point.
func (h *Handlers) Routes(r chi.Router) {
	// Fixed paths before the column routes
	r.Get("/stats", h.Stats)
	r.Post("/save", h.Save)
	r.Post("/load", h.Load)
	r.Post("/clear", h.Clear)
	r.Put("/bulk-update", h.BulkUpdate)

	r.Get("/column/{column}", h.ListTasks)
	r.Post("/column/{column}", h.CreateTask)
	r.Put("/column/{column}/{id}/complete", h.CompleteTask)
	r.Put("/column/{column}/{id}/ignore", h.IgnoreTask)
	r.Put("/column/{column}/{id}", h.UpdateTask)
	r.Delete("/column/{column}/{id}", h.DeleteTask)
}

// parseColumn returns the column named in the URL. Unknown names are left
// for the board to reject.
func parseColumn(r *http.Request) models.Column {
	return models.Column(chi.URLParam(r, "column"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"detail": message})
}

func respondServerError(w http.ResponseWriter, err error) {
	log.Printf("internal server error: %v", err)
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondBoardError maps board errors onto status codes.
func respondBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondServerError(w, err)
	}
}

func invalidJSON(w http.ResponseWriter, err error) {
	respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
}
