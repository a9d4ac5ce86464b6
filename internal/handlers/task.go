package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type textPayload struct {
	Text *string `json:"text"`
}

// ListTasks returns the tasks of a column sorted by order.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.board.List(parseColumn(r))
	if err != nil {
		respondBoardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// CreateTask adds a task to the end of a column.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var payload textPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		invalidJSON(w, err)
		return
	}
	if payload.Text == nil {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	task, err := h.board.Add(r.Context(), parseColumn(r), *payload.Text)
	if err != nil {
		respondBoardError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask replaces the text of a task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var payload textPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		invalidJSON(w, err)
		return
	}
	if payload.Text == nil {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	task, err := h.board.EditText(r.Context(), parseColumn(r), chi.URLParam(r, "id"), *payload.Text)
	if err != nil {
		respondBoardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// CompleteTask sets the completion status of a task.
func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Completed *bool `json:"completed"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		invalidJSON(w, err)
		return
	}
	if payload.Completed == nil {
		respondError(w, http.StatusBadRequest, "completed is required")
		return
	}

	task, err := h.board.SetCompleted(r.Context(), parseColumn(r), chi.URLParam(r, "id"), *payload.Completed)
	if err != nil {
		respondBoardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// IgnoreTask sets the ignored status of a task. Ignored tasks stay listed but
// are left out of the stats.
func (h *Handlers) IgnoreTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Ignored *bool `json:"ignored"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		invalidJSON(w, err)
		return
	}
	if payload.Ignored == nil {
		respondError(w, http.StatusBadRequest, "ignored is required")
		return
	}

	task, err := h.board.SetIgnored(r.Context(), parseColumn(r), chi.URLParam(r, "id"), *payload.Ignored)
	if err != nil {
		respondBoardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Delete(r.Context(), parseColumn(r), chi.URLParam(r, "id")); err != nil {
		respondBoardError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
