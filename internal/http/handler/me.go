package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nudge/internal/account"
	"nudge/internal/auth"
	"nudge/internal/logger"
	"nudge/internal/report"
	"nudge/internal/task"
)

type MeHandler struct {
	Accounts *account.Service
	Reports  *report.Service
	Log      *logger.Logger
	Now      func() time.Time
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Accounts.Profile(r.Context(), uid)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *MeHandler) SuperGoals(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	sg, err := h.Accounts.SuperGoals(r.Context(), uid)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

func (h *MeHandler) UpdateSuperGoals(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req account.SuperGoalsPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	sg, err := h.Accounts.UpdateSuperGoals(r.Context(), uid, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

func (h *MeHandler) Today(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	out, err := h.Reports.Today(r.Context(), uid, h.Now())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MeHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	perPage := intParam(q.Get("perPage"), 5)

	var cats []task.Category
	for _, c := range strings.Split(q.Get("categories"), ",") {
		if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
			cats = append(cats, task.Category(c))
		}
	}

	out, err := h.Reports.History(r.Context(), uid, page, perPage, cats)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MeHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidInput), errors.Is(err, report.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrNotFound), errors.Is(err, report.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.Log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

func intParam(v string, def int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
