package handlers

import (
	"net/http"
)

// Stats returns the per-column counts of tasks that are not ignored.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.board.Stats())
}

// BulkUpdate replaces the membership and order of both columns.
func (h *Handlers) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Signal []string `json:"signal"`
		Noise  []string `json:"noise"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		invalidJSON(w, err)
		return
	}

	if err := h.board.BulkReorder(r.Context(), payload.Signal, payload.Noise); err != nil {
		respondBoardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":      "Bulk update completed successfully",
		"signal_count": len(payload.Signal),
		"noise_count":  len(payload.Noise),
	})
}

// Save forces a write of the current state to storage.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Save(r.Context()); err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Tasks saved successfully"})
}

// Load replaces the in-memory state with what storage holds and returns it.
func (h *Handlers) Load(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.board.Reload(r.Context())
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Tasks loaded successfully",
		"tasks":   snapshot,
	})
}

// Clear removes every task from memory and storage.
func (h *Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Clear(r.Context()); err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "All data cleared successfully"})
}
