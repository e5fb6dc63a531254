package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nudge/internal/account"
	"nudge/internal/auth"
	"nudge/internal/logger"
)

type AuthHandler struct {
	Accounts     *account.Service
	JWT          *auth.JWT
	CookieSecure bool
	Log          *logger.Logger
	Now          func() time.Time
}

type registerReq struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	u, err := h.Accounts.Register(r.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, h.Now())
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	case errors.Is(err, account.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already used")
		return
	case err != nil:
		h.Log.Error("register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	h.issue(w, u.ID, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	u, err := h.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		h.Log.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	h.issue(w, u.ID, http.StatusOK)
}

// issue returns the token in the body and as the session cookie.
func (h *AuthHandler) issue(w http.ResponseWriter, userID uint64, status int) {
	token, err := h.JWT.Sign(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenTTL.Seconds()),
	})
	writeJSON(w, status, map[string]any{
		"user_id": userID,
		"token":   token,
	})
}
