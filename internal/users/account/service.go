// Copyright (c) 2026 Vidora. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidora/vidora/internal/platform/blob"
	"github.com/vidora/vidora/internal/users/auth"
	"github.com/vidora/vidora/pkg/uuid"
)

// # Service Layer

// Service orchestrates business logic for profile updates and watch history.
type Service struct {
	accountRepository AccountRepository
	historyRepository WatchHistoryRepository
	blobStore         blob.Store
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	historyRepo WatchHistoryRepository,
	blobStore blob.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		historyRepository: historyRepo,
		blobStore:         blobStore,
		logger:            logger,
	}
}

// # Profile Management

/*
UpdateDetails changes the mutable textual profile fields of a user.

Description: Only the full name can change; username and email are fixed at
registration.

Parameters:
  - context: context.Context
  - userID: string
  - fullName: string

Returns:
  - *auth.User: The updated, sanitized profile
  - error: Lookup or storage failures
*/
func (service *Service) UpdateDetails(context context.Context, userID, fullName string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	user.FullName = fullName

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_details_updated", slog.String("user_id", userID))

	return user.Sanitized(), nil
}

/*
UpdateAvatar publishes a new avatar image and stores its URL on the profile.

Parameters:
  - context: context.Context
  - userID: string
  - localPath: string (Path to the spooled upload)

Returns:
  - *auth.User: The updated, sanitized profile
  - error: Upload, lookup, or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID, localPath string) (*auth.User, error) {
	return service.updateImage(context, userID, localPath, func(user *auth.User, url string) {
		user.AvatarURL = url
	})
}

/*
UpdateCoverImage publishes a new cover image and stores its URL on the profile.

Parameters:
  - context: context.Context
  - userID: string
  - localPath: string (Path to the spooled upload)

Returns:
  - *auth.User: The updated, sanitized profile
  - error: Upload, lookup, or storage failures
*/
func (service *Service) UpdateCoverImage(context context.Context, userID, localPath string) (*auth.User, error) {
	return service.updateImage(context, userID, localPath, func(user *auth.User, url string) {
		user.CoverImageURL = url
	})
}

// updateImage uploads the spooled file and applies the returned URL via the
// assign callback before persisting.
func (service *Service) updateImage(context context.Context, userID, localPath string, assign func(*auth.User, string)) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_image_lookup_failed: %w", err)
	}

	url, err := service.blobStore.Upload(context, localPath)
	if err != nil {
		return nil, fmt.Errorf("account_service_image_upload_failed: %w", err)
	}

	assign(user, url)

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_image_update_failed: %w", err)
	}

	service.logger.Info("user_image_updated", slog.String("user_id", userID))

	return user.Sanitized(), nil
}

// # Watch History

/*
WatchHistory returns the newest viewing entries for a user.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int

Returns:
  - []WatchEntry: Entries ordered newest first
  - error: Retrieval failures
*/
func (service *Service) WatchHistory(context context.Context, userID string, limit int) ([]WatchEntry, error) {
	entries, err := service.historyRepository.ListByUserID(context, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("account_service_watch_history_failed: %w", err)
	}
	return entries, nil
}

// RecordWatchInput carries the playback progress reported by a client.
type RecordWatchInput struct {
	VideoID         string
	Title           string
	ThumbnailURL    string
	DurationSeconds int
	ProgressSeconds int
}

/*
RecordWatch upserts a viewing entry for the user.

Description: Repeated reports for the same video update the existing entry's
progress and timestamp instead of creating duplicates.

Parameters:
  - context: context.Context
  - userID: string
  - input: RecordWatchInput

Returns:
  - error: Storage failures
*/
func (service *Service) RecordWatch(context context.Context, userID string, input RecordWatchInput) error {
	entry := &WatchEntry{
		ID:              uuid.New(),
		UserID:          userID,
		VideoID:         input.VideoID,
		Title:           input.Title,
		ThumbnailURL:    input.ThumbnailURL,
		DurationSeconds: input.DurationSeconds,
		ProgressSeconds: input.ProgressSeconds,
		WatchedAt:       time.Now(),
	}

	if err := service.historyRepository.Record(context, entry); err != nil {
		return fmt.Errorf("account_service_record_watch_failed: %w", err)
	}

	return nil
}
