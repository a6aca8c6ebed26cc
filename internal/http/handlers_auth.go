package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"expenseflow/internal/auth"
	"expenseflow/internal/core"
	"expenseflow/internal/storage"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profilePayload struct {
	Email    string `json:"email"`
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

const minPasswordLen = 6

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req credentialsPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(req.Email) {
		writeError(w, http.StatusUnprocessableEntity, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusUnprocessableEntity, "password too short")
		return
	}

	if err := s.verifier.Register(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, profilePayload{
		Email:    req.Email,
		Currency: core.DefaultCurrency,
		Theme:    string(core.ThemeLight),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req credentialsPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.verifier.Verify(r.Context(), email, req.Password)
	if err != nil {
		slog.WarnContext(r.Context(), "Login failed", "email", email)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, profilePayload{
		Email:    user.Email,
		Currency: user.Currency,
		Theme:    string(user.Theme),
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusUnprocessableEntity, "password too short")
		return
	}

	email := owner(r)
	if err := s.verifier.ChangePassword(r.Context(), email, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "wrong current password")
			return
		}
		slog.ErrorContext(r.Context(), "Password change failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "password change failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// handleForgotPassword issues a reset code. The response is the same whether
// or not the account exists, so the endpoint cannot be used to probe emails.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.verifier.IssueOTP(r.Context(), email); err != nil {
		slog.InfoContext(r.Context(), "OTP not issued", "email", email, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "if the account exists, a reset code was sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusUnprocessableEntity, "password too short")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.verifier.ResetPassword(r.Context(), email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			writeError(w, http.StatusUnauthorized, "invalid or expired code")
			return
		}
		slog.ErrorContext(r.Context(), "Password reset failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "password reset failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	email := owner(r)
	user, err := s.settings.GetUser(r.Context(), email)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings lookup failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "settings lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, profilePayload{
		Email:    user.Email,
		Currency: user.Currency,
		Theme:    string(user.Theme),
	})
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	email := owner(r)

	switch r.Method {
	case http.MethodGet:
		currency, err := s.settings.GetCurrency(r.Context(), email)
		if err != nil {
			slog.ErrorContext(r.Context(), "Currency lookup failed", "email", email, "error", err)
			writeError(w, http.StatusInternalServerError, "currency lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"currency": currency})

	case http.MethodPut:
		var req struct {
			Currency string `json:"currency"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		currency := sanitizeInput(req.Currency)
		if currency == "" {
			writeError(w, http.StatusUnprocessableEntity, "currency cannot be empty")
			return
		}
		if err := s.settings.UpdateCurrency(r.Context(), email, currency); err != nil {
			slog.ErrorContext(r.Context(), "Currency update failed", "email", email, "error", err)
			writeError(w, http.StatusInternalServerError, "currency update failed")
			return
		}
		s.invalidateDashboard(email)
		writeJSON(w, http.StatusOK, map[string]string{"currency": currency})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	email := owner(r)

	switch r.Method {
	case http.MethodGet:
		theme, err := s.settings.GetTheme(r.Context(), email)
		if err != nil {
			slog.ErrorContext(r.Context(), "Theme lookup failed", "email", email, "error", err)
			writeError(w, http.StatusInternalServerError, "theme lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})

	case http.MethodPut:
		var req struct {
			Theme string `json:"theme"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// An empty theme toggles from the stored value.
		var theme core.Theme
		if req.Theme == "" {
			current, err := s.settings.GetTheme(r.Context(), email)
			if err != nil {
				slog.ErrorContext(r.Context(), "Theme lookup failed", "email", email, "error", err)
				writeError(w, http.StatusInternalServerError, "theme lookup failed")
				return
			}
			theme = current.Toggle()
		} else {
			parsed, err := core.ParseTheme(req.Theme)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "invalid theme")
				return
			}
			theme = parsed
		}

		if err := s.settings.UpdateTheme(r.Context(), email, theme); err != nil {
			slog.ErrorContext(r.Context(), "Theme update failed", "email", email, "error", err)
			writeError(w, http.StatusInternalServerError, "theme update failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
