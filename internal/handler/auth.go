// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/worklodge/wlp-go/internal/api"
	"github.com/worklodge/wlp-go/internal/guard"
	"github.com/worklodge/wlp-go/internal/middleware"
	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/nav"
	"github.com/worklodge/wlp-go/internal/render"
	"github.com/worklodge/wlp-go/internal/service"
	"github.com/worklodge/wlp-go/internal/session"
)

// AuthHandler handles authentication routes. Credentials are verified by the
// lodging API; this handler owns the browser session and the return-path
// handling around the login detour.
type AuthHandler struct {
	client          *api.Client
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, client *api.Client, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		client:          client,
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// loginFormData is the payload for the login page.
type loginFormData struct {
	Next  string
	Email string
}

// LoginForm renders the login page. The guard layer has already bounced
// signed-in users, so only the return-path needs handling here.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := loginFormData{
		Next: guard.SafeReturnPath(r.URL.Query().Get(guard.ReturnParam)),
	}
	if err := h.renderer.Render(w, r, "auth/login", pageData(r, "Sign in", data)); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// Login handles the login form submission. On success the upstream session
// token is stored in the browser session and the identity is re-probed
// before redirecting, so the destination's guard sees the signed-in state.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	next := guard.SafeReturnPath(r.FormValue(guard.ReturnParam))
	backToLogin := guard.LoginRedirect(next)
	ip := clientIP(r)

	if email == "" || password == "" {
		flashError(w, r, h.renderer, backToLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if !h.loginProtection.CheckIPRateLimit(ip) {
			flashError(w, r, h.renderer, backToLogin, "Too many login attempts, please slow down")
			return
		}
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login attempt on locked account", "", ip, map[string]any{"email": email})
			flashError(w, r, h.renderer, backToLogin, "Account temporarily locked, try again in "+formatDuration(remaining))
			return
		}
	}

	token, err := h.client.Login(r.Context(), email, password)
	if err != nil {
		slog.Debug("login rejected", "email", email, "error", err)
		ua := service.ParseUserAgent(r.UserAgent())
		meta := ua.Metadata()
		meta["email"] = email
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed", "", ip, meta)

		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Account locked due to failed attempts", "", ip, map[string]any{"email": email, "duration": lockDuration.String()})
				flashError(w, r, h.renderer, backToLogin, "Too many failed attempts, account locked for "+formatDuration(lockDuration))
				return
			}
			if remaining := h.loginProtection.GetRemainingAttempts(email); remaining > 0 && remaining <= 3 {
				flashError(w, r, h.renderer, backToLogin, fmt.Sprintf("%s (%d attempts remaining)", apiErrorMessage(err), remaining))
				return
			}
		}
		flashError(w, r, h.renderer, backToLogin, apiErrorMessage(err))
		return
	}

	if token == "" {
		slog.Error("login succeeded but no session cookie was issued", "email", email)
		flashError(w, r, h.renderer, backToLogin, "Sign-in could not be completed, please try again")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), session.KeyAPIToken, token)

	// Re-probe the identity with the new token before navigating, so the
	// destination's guard evaluates against the signed-in session.
	st := session.NewStore(h.client.WithToken(token))
	if err := st.Refresh(r.Context()); err != nil {
		slog.Error("identity probe failed after login", "email", email, "error", err)
		flashError(w, r, h.renderer, backToLogin, "Sign-in could not be confirmed, please try again")
		return
	}

	snap := st.Snapshot()
	userID, name := "", ""
	if snap.Identity != nil {
		userID = snap.Identity.ID
		name = snap.Identity.DisplayName()
	}

	ua := service.ParseUserAgent(r.UserAgent())
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User signed in", userID, ip, ua.Metadata())
	slog.Info("user signed in", "user_id", userID, "email", email)

	if name != "" {
		h.renderer.SetFlash(r, "Welcome back, "+name, "success")
	}
	http.Redirect(w, r, guard.ConsumeReturnPath(next), http.StatusSeeOther)
}

// signupFormData is the payload for the signup page.
type signupFormData struct {
	Roles []model.Role
}

// SignupForm renders the signup page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	data := signupFormData{Roles: model.Roles()}
	if err := h.renderer.Render(w, r, "auth/signup", pageData(r, "Create account", data)); err != nil {
		logAndInternalError(w, "failed to render signup page", "error", err)
	}
}

// Signup handles account creation. The backend validates the admin code for
// ADMIN signups; this handler only checks the form shape.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectSignup) {
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	ip := clientIP(r)

	if name == "" || email == "" || password == "" {
		flashError(w, r, h.renderer, redirectSignup, "Name, email and password are required")
		return
	}
	if len(password) < 8 {
		flashError(w, r, h.renderer, redirectSignup, "Password must be at least 8 characters")
		return
	}

	role, ok := model.ParseRole(r.FormValue("role"))
	if !ok {
		flashError(w, r, h.renderer, redirectSignup, "Please choose a role")
		return
	}
	adminCode := r.FormValue("admin_code")
	if role == model.RoleAdmin && adminCode == "" {
		flashError(w, r, h.renderer, redirectSignup, "An admin code is required for admin accounts")
		return
	}

	token, err := h.client.Signup(r.Context(), api.SignupParams{
		Name:      name,
		Email:     email,
		Password:  password,
		Role:      role,
		AdminCode: adminCode,
	})
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectSignup, err, "signup rejected")
		return
	}

	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Account created", "", ip, map[string]any{"email": email, "role": string(role)})

	if token == "" {
		// Backend did not sign the new account in; hand off to login.
		flashSuccess(w, r, h.renderer, redirectLogin, "Account created, please sign in")
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), session.KeyAPIToken, token)

	st := session.NewStore(h.client.WithToken(token))
	if err := st.Refresh(r.Context()); err != nil {
		slog.Error("identity probe failed after signup", "email", email, "error", err)
		flashSuccess(w, r, h.renderer, redirectLogin, "Account created, please sign in")
		return
	}

	h.renderer.SetFlash(r, "Welcome, "+name, "success")
	http.Redirect(w, r, guard.DefaultLanding, http.StatusSeeOther)
}

// Logout signs the user out. It is idempotent: a signed-out visitor hitting
// it lands back on the homepage without error, and the local session is
// cleared even when the upstream call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	snap := middleware.GetSnapshot(r)
	userID := ""
	if snap.Identity != nil {
		userID = snap.Identity.ID
	}

	if st := middleware.GetStore(r); st != nil {
		if err := st.SignOut(r.Context()); err != nil {
			slog.Warn("upstream sign-out failed", "error", err)
		}
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	if userID != "" {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User signed out", userID, clientIP(r), nil)
		slog.Info("user signed out", "user_id", userID)
	}

	http.Redirect(w, r, nav.PathHome, http.StatusSeeOther)
}

// ForgotPasswordForm renders the password reset request page.
func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "auth/forgot_password", pageData(r, "Reset password", nil)); err != nil {
		logAndInternalError(w, "failed to render forgot-password page", "error", err)
	}
}

// ForgotPassword asks the backend to send a reset link. The response is the
// same whether or not the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteForgotPassword) {
		return
	}

	email := r.FormValue("email")
	if email == "" {
		flashError(w, r, h.renderer, RouteForgotPassword, "Email is required")
		return
	}

	if err := h.client.ForgotPassword(r.Context(), email); err != nil {
		slog.Error("password reset request failed", "error", err)
	}

	flashSuccess(w, r, h.renderer, redirectLogin, "If that address has an account, a reset link is on its way")
}

// updatePasswordFormData is the payload for the update-password page.
type updatePasswordFormData struct {
	Token string
}

// UpdatePasswordForm renders the new-password page reached from a reset link.
func (h *AuthHandler) UpdatePasswordForm(w http.ResponseWriter, r *http.Request) {
	data := updatePasswordFormData{Token: r.URL.Query().Get("token")}
	if err := h.renderer.Render(w, r, "auth/update_password", pageData(r, "Choose a new password", data)); err != nil {
		logAndInternalError(w, "failed to render update-password page", "error", err)
	}
}

// UpdatePassword sets a new password using the reset token.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteUpdatePassword) {
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")
	back := RouteUpdatePassword + "?token=" + url.QueryEscape(token)

	if token == "" {
		flashError(w, r, h.renderer, RouteForgotPassword, "This reset link is invalid, request a new one")
		return
	}
	if len(password) < 8 {
		flashError(w, r, h.renderer, back, "Password must be at least 8 characters")
		return
	}
	if password != confirm {
		flashError(w, r, h.renderer, back, "Passwords do not match")
		return
	}

	if err := h.client.ResetPassword(r.Context(), token, password); err != nil {
		flashAPIError(w, r, h.renderer, back, err, "password reset failed")
		return
	}

	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Password reset completed", "", clientIP(r), nil)
	flashSuccess(w, r, h.renderer, redirectLogin, "Password updated, sign in with your new password")
}
