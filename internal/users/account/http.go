// Copyright (c) 2026 Vidora. All rights reserved.

package account

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/validate"
	"github.com/vidora/vidora/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements profile-management HTTP endpoints.
//
// All routes require an authenticated identity; the auth gate is applied by
// the server when mounting this router.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account-management routes.
//
// # Endpoints
//   - PATCH /details       : Updates textual profile fields.
//   - PATCH /avatar        : Replaces the avatar image.
//   - PATCH /cover-image   : Replaces the cover image.
//   - GET   /watch-history : Lists recent viewing entries.
//   - POST  /watch-history : Records playback progress.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Patch("/details", handler.updateDetails)
	router.Patch("/avatar", handler.updateAvatar)
	router.Patch("/cover-image", handler.updateCoverImage)
	router.Get("/watch-history", handler.watchHistory)
	router.Post("/watch-history", handler.recordWatch)

	return router
}

// # Request Payloads

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
}

type recordWatchRequest struct {
	VideoID         string `json:"videoId"`
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	DurationSeconds int    `json:"durationSeconds"`
	ProgressSeconds int    `json:"progressSeconds"`
}

/*
UpdateDetails changes the mutable textual profile fields.

PATCH /api/v1/account/details

Description: Only the full name is mutable; username and email are fixed
at registration and rejected here by omission.

Request:
  - Body: updateDetailsRequest (FullName)

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Validation failure
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateDetails(writer http.ResponseWriter, request *http.Request) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	var input updateDetailsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldFullName, input.FullName).
		MaxLen(auth.FieldFullName, input.FullName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.accountService.UpdateDetails(request.Context(), user.ID, input.FullName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account details updated successfully", updated)
}

/*
UpdateAvatar replaces the user's avatar image.

PATCH /api/v1/account/avatar

Request:
  - Form file: avatar

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidForm: Missing or unreadable file
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, auth.FieldAvatar,
		handler.accountService.UpdateAvatar, "Avatar updated successfully")
}

/*
UpdateCoverImage replaces the user's cover image.

PATCH /api/v1/account/cover-image

Request:
  - Form file: coverImage

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidForm: Missing or unreadable file
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, auth.FieldCoverImage,
		handler.accountService.UpdateCoverImage, "Cover image updated successfully")
}

// updateImage is the shared transport flow for single-file image replacement.
func (handler *Handler) updateImage(
	writer http.ResponseWriter,
	request *http.Request,
	field string,
	apply func(ctx context.Context, userID, localPath string) (*auth.User, error),
	message string,
) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes)
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}

	localPath, err := requestutil.SaveFormFile(request, field)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if localPath == "" {
		respond.Error(writer, request, validate.RequiredError(field, "Image file is required"))
		return
	}
	defer func() { _ = os.Remove(localPath) }()

	updated, err := apply(request.Context(), user.ID, localPath)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, message, updated)
}

/*
WatchHistory lists the user's most recent viewing entries.

GET /api/v1/account/watch-history?limit=50

Response:
  - 200: []WatchEntry: Entries ordered newest first
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) watchHistory(writer http.ResponseWriter, request *http.Request) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

	entries, err := handler.accountService.WatchHistory(request.Context(), user.ID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Watch history fetched successfully", entries)
}

/*
RecordWatch stores playback progress for a video.

POST /api/v1/account/watch-history

Request:
  - Body: recordWatchRequest (VideoID, Title, progress fields)

Response:
  - 200: Success: Entry recorded
  - 400: ErrInvalidJSON: Validation failure
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) recordWatch(writer http.ResponseWriter, request *http.Request) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	var input recordWatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("videoId", input.VideoID).
		UUID("videoId", input.VideoID).
		Required("title", input.Title).
		Custom("progressSeconds", input.ProgressSeconds < 0, "Must not be negative").
		Custom("durationSeconds", input.DurationSeconds < 0, "Must not be negative")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.accountService.RecordWatch(request.Context(), user.ID, RecordWatchInput{
		VideoID:         input.VideoID,
		Title:           input.Title,
		ThumbnailURL:    input.ThumbnailURL,
		DurationSeconds: input.DurationSeconds,
		ProgressSeconds: input.ProgressSeconds,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Watch progress recorded successfully", nil)
}
