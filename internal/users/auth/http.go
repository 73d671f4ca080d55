// Copyright (c) 2026 Vidora. All rights reserved.

package auth

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/middleware"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/validate"
	"github.com/vidora/vidora/pkg/username"
)

// # Definitions & Constructors

// Handler implements the HTTP delivery layer for the authentication lifecycle.
//
// # Scope
//
// This handler manages every user lifecycle entry point: registration, login,
// token rotation, logout, password change, and identity introspection. It is
// strictly responsible for transport concerns (status codes, cookies, JSON).
type Handler struct {
	authService *Service
	gate        *Gate
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, gate *Gate) *Handler {
	return &Handler{
		authService: service,
		gate:        gate,
	}
}

// Routes returns a [chi.Router] configured with the user-auth route tree.
//
// # Endpoints
//   - POST  /register        : Creates a new account (multipart).
//   - POST  /login           : Authenticates and sets session cookies.
//   - POST  /refresh-token   : Rotates the token pair.
//   - POST  /logout          : Revokes the session (protected).
//   - PATCH /change-password : Updates credentials (protected).
//   - GET   /current-user    : Returns the authenticated profile (protected).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.gate.Require)
		r.Post("/logout", handler.logout)
		r.Patch("/change-password", handler.changePassword)
		r.Get("/current-user", handler.currentUser)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Description: Accepts a multipart form carrying the profile fields plus a
required avatar image and an optional cover image, validates input, and
persists a new user profile.

Request:
  - Form fields: username, email, fullName, password
  - Form files: avatar (required), coverImage (optional)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidForm: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes)

	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}

	usernameValue := username.Normalize(request.FormValue(FieldUsername))
	emailValue := username.Normalize(request.FormValue(FieldEmail))
	fullNameValue := request.FormValue(FieldFullName)
	passwordValue := request.FormValue(FieldPassword)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, usernameValue).
		MinLen(FieldUsername, usernameValue, UsernameMinLength).
		MaxLen(FieldUsername, usernameValue, 32).
		Username(FieldUsername, usernameValue).
		Required(FieldEmail, emailValue).
		Email(FieldEmail, emailValue).
		Required(FieldFullName, fullNameValue).
		MaxLen(FieldFullName, fullNameValue, 100).
		Required(FieldPassword, passwordValue).
		MinLen(FieldPassword, passwordValue, PasswordMinLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	avatarPath, err := requestutil.SaveFormFile(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if avatarPath == "" {
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "Avatar image is required"))
		return
	}
	defer func() { _ = os.Remove(avatarPath) }()

	coverImagePath, err := requestutil.SaveFormFile(request, FieldCoverImage)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if coverImagePath != "" {
		defer func() { _ = os.Remove(coverImagePath) }()
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:       usernameValue,
		Email:          emailValue,
		FullName:       fullNameValue,
		Password:       passwordValue,
		AvatarPath:     avatarPath,
		CoverImagePath: coverImagePath,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User registered successfully", user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/users/login

Description: Verifies credentials, issues the access/refresh token pair, and
injects both as secure cookies. The tokens are also echoed in the body for
non-browser clients.

Request:
  - Body: loginRequest (Identifier or Username/Email, Password)

Response:
  - 200: Session: Tokens and user profile
  - 401: ErrUnauthorized: Invalid credentials
  - 404: ErrNotFound: Unknown identifier
  - 429: ErrRateLimited: Too many failed attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Browser clients send a single identifier field; older mobile builds
	// still send username or email separately.
	identifier := input.Identifier
	if identifier == "" {
		identifier = input.Username
	}
	if identifier == "" {
		identifier = input.Email
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, identifier).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Identifier: identifier,
		Password:   input.Password,
		ClientIP:   middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, "User logged in successfully", map[string]any{
		"user":         session.User,
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
	})
}

/*
RefreshToken rotates the session's token pair.

POST /api/v1/users/refresh-token

Description: Reads the refresh token from the cookie (preferred) or the JSON
body, verifies and rotates it, and sets the new pair as cookies. A reused or
superseded token is rejected.

Request:
  - Cookie: refreshToken, or Body: refreshTokenRequest (RefreshToken)

Response:
  - 200: Session: New token pair
  - 401: ErrUnauthorized: Missing, invalid, expired, or reused refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	presentedToken := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		presentedToken = cookie.Value
	}
	if presentedToken == "" {
		var input refreshTokenRequest
		// Body is optional when the cookie is present; ignore decode errors.
		_ = requestutil.DecodeJSON(request, &input)
		presentedToken = input.RefreshToken
	}

	if presentedToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), presentedToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, "Access token refreshed successfully", map[string]any{
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
	})
}

/*
Logout terminates the current user session.

POST /api/v1/users/logout

Description: Revokes the persisted refresh token and clears both security
cookies. Idempotent: logging out twice succeeds.

Response:
  - 200: Success: Session terminated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	user := CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	if err := handler.authService.Logout(request.Context(), user.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearSessionCookies(writer)

	respond.OK(writer, "User logged out successfully", nil)
}

/*
ChangePassword updates the authenticated user's password.

PATCH /api/v1/users/change-password

Description: Verifies the current password before applying the new one. The
live session is not revoked.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 400: ErrInvalidJSON: Weak password or validation failure
  - 401: ErrUnauthorized: Old password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	user := CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLength).
		Custom(FieldNewPassword, input.NewPassword == input.OldPassword,
			"Must differ from the old password")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ChangePassword(
		request.Context(),
		user.ID,
		input.OldPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed successfully", nil)
}

/*
CurrentUser returns the authenticated user's profile.

GET /api/v1/users/current-user

Response:
  - 200: User: The sanitized profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	user := CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	respond.OK(writer, "Current user fetched successfully", user)
}

// # Transport Helpers

// setSessionCookies attaches both tokens as hardened cookies.
func setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.TokenCookiePath,
		Expires:  session.AccessTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.TokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both security cookies on the client.
func clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.TokenCookiePath,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
