package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MalcoreHardcore698/authdemo/auth"
	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/internal/rate"
	"github.com/MalcoreHardcore698/authdemo/jwt"
	"github.com/MalcoreHardcore698/authdemo/mockstore"
	"github.com/MalcoreHardcore698/authdemo/validation"
)

type claimsKey struct{}

// Handler implements the /auth endpoints.
type Handler struct {
	store    *mockstore.Store
	tokens   *jwt.Manager
	limiter  *rate.Limiter
	denylist Denylist
	logger   *slog.Logger
}

// Routes returns the /auth sub-router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Post("/reset-password", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.requireToken)
		r.Get("/me", h.me)
		r.Post("/logout", h.logout)
	})
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in authapi.LoginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if !h.validate(w, r, validation.Values{"email": in.Email, "password": in.Password}, auth.LoginRules()) {
		return
	}

	ip := clientIP(r)
	if h.limiter != nil {
		if err := h.limiter.CheckLogin(r.Context(), in.Email, ip); err != nil {
			h.writeLimitError(w, r, err)
			return
		}
	}

	user, err := h.store.AuthenticateUser(r.Context(), in)
	if err != nil {
		if errors.Is(err, mockstore.ErrInvalidCredentials) {
			if h.limiter != nil {
				if err := h.limiter.IncrementLogin(r.Context(), in.Email, ip); err != nil {
					h.logger.WarnContext(r.Context(), "failed to record login attempt", "error", err)
				}
			}
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		writeInternal(w, r, h.logger, err)
		return
	}
	if h.limiter != nil {
		if err := h.limiter.ResetLogin(r.Context(), in.Email); err != nil {
			h.logger.WarnContext(r.Context(), "failed to reset login attempts", "error", err)
		}
	}

	h.issue(w, r, http.StatusOK, user)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in authapi.RegisterRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	values := validation.Values{"name": in.Name, "email": in.Email, "password": in.Password}
	if !h.validate(w, r, values, auth.RegisterRules()) {
		return
	}

	user, err := h.store.CreateUser(r.Context(), in)
	switch {
	case errors.Is(err, mockstore.ErrEmailTaken):
		writeError(w, http.StatusConflict, msgEmailTaken)
		return
	case err != nil:
		writeInternal(w, r, h.logger, err)
		return
	}

	h.issue(w, r, http.StatusCreated, user)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in authapi.ResetPasswordRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if !h.validate(w, r, validation.Values{"email": in.Email}, auth.ForgotPasswordRules()) {
		return
	}
	if h.limiter != nil {
		if err := h.limiter.AllowReset(r.Context(), in.Email); err != nil {
			h.writeLimitError(w, r, err)
			return
		}
	}

	msg, err := h.store.ResetPassword(r.Context(), in.Email)
	switch {
	case errors.Is(err, mockstore.ErrEmailNotFound):
		writeError(w, http.StatusNotFound, msgEmailNotFound)
		return
	case err != nil:
		writeInternal(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, authapi.ResetPasswordResponse{Message: msg, Success: true})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(claimsKey{}).(*jwt.Claims)
	user, ok := h.store.FindUserByID(r.Context(), claims.UID)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(claimsKey{}).(*jwt.Claims)
	if h.denylist != nil && claims.ExpiresAt != nil {
		if err := h.denylist.Deny(r.Context(), claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			writeInternal(w, r, h.logger, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, status int, user mockstore.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}
	writeJSON(w, status, authapi.AuthResponse{User: user, Token: token})
}

// validate writes a 400 carrying every field error and reports false when
// values fail set. The top-level message is the first failing field's.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request, values validation.Values, set validation.RuleSet) bool {
	failures := validation.ValidateForm(r.Context(), values, set)
	if len(failures) == 0 {
		return true
	}

	fields := make([]string, 0, len(failures))
	for name := range failures {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	body := errorBody{Message: failures[fields[0]].Message, Errors: make(map[string]string, len(failures))}
	for name, fe := range failures {
		body.Errors[name] = fe.Message
	}
	writeJSON(w, http.StatusBadRequest, body)
	return false
}

func (h *Handler) writeLimitError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rate.ErrRateLimited) {
		writeError(w, http.StatusTooManyRequests, msgTooManyAttempts)
		return
	}
	writeInternal(w, r, h.logger, err)
}

// requireToken verifies the bearer token and stores its claims in the
// request context.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, msgNoToken)
			return
		}
		claims, err := h.tokens.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		if h.denylist != nil {
			denied, err := h.denylist.Denied(r.Context(), claims.ID)
			if err != nil {
				writeInternal(w, r, h.logger, err)
				return
			}
			if denied {
				writeError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// clientIP expects chi's RealIP middleware to have normalized RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
