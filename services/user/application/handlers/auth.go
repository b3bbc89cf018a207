package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/httpx"
	"github.com/ghuser/pantry/pkg/logger"
	pkgvalidator "github.com/ghuser/pantry/pkg/validator"
	appsvcs "github.com/ghuser/pantry/services/user/application/services"
)

// AuthHandler serves registration and the token endpoints. The refresh token
// never leaves the server: it lives in the session referenced by the cookie.
type AuthHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

func NewAuthHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, store: store, log: log}
}

// Register creates an account and signs it in.
//
//	@Summary	Register
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RegisterRequest	true	"Credentials"
//	@Success	201		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/users [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	h.respond(w, r, http.StatusCreated, sess)
}

// Login exchanges credentials for an access token and a refresh session.
//
//	@Summary	Log in
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	h.respond(w, r, http.StatusOK, sess)
}

// Refresh issues a new access token from the session's refresh token and
// rotates it. Any failure clears the session.
//
//	@Summary	Refresh access token
//	@Tags		users
//	@Produce	json
//	@Success	200	{object}	AuthResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/users/refresh-token [get]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := auth.RefreshTokenFromSession(h.store, r)
	if err == nil {
		var sess *appsvcs.Session
		if sess, err = h.svc.Auth.Refresh(r.Context(), token); err == nil {
			h.respond(w, r, http.StatusOK, sess)
			return
		}
	}

	h.log.InfoContext(r.Context(), "refresh rejected", "error", err)
	if clearErr := auth.ClearSession(h.store, w, r); clearErr != nil {
		h.log.WarnContext(r.Context(), "failed to clear session", "error", clearErr)
	}
	errhttp.WriteError(w, err)
}

// Logout destroys the refresh session.
//
//	@Summary	Log out
//	@Tags		users
//	@Success	204
//	@Router		/users/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(h.store, w, r); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Me returns the caller's account.
//
//	@Summary	Current user
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UserResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	u, err := h.svc.Auth.Me(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, sess *appsvcs.Session) {
	if err := auth.SaveRefreshToken(h.store, w, r, sess.RefreshToken); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, status, toAuthResponse(sess))
}
