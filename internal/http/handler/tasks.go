package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nudge/internal/auth"
	"nudge/internal/engine"
	"nudge/internal/logger"
)

const maxRecommendCount = 20

type TaskHandler struct {
	Engine       *engine.Service
	DefaultCount int
	Log          *logger.Logger
	Now          func() time.Time
}

func (h *TaskHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	count := intParam(r.URL.Query().Get("count"), h.DefaultCount)
	if count < 1 || count > maxRecommendCount {
		writeError(w, http.StatusBadRequest, "count must be between 1 and 20")
		return
	}

	tasks, err := h.Engine.RecommendForUser(r.Context(), uid, count, h.Now())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

type statusReq struct {
	TaskID string `json:"taskId"`
	Action string `json:"action"`
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	action, err := engine.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	if err := h.Engine.ApplyStatus(r.Context(), uid, req.TaskID, action, h.Now()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *TaskHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, engine.ErrMissingSystemState):
		h.Log.Error("invariant violation", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
	default:
		h.Log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
