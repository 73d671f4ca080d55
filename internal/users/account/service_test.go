// Copyright (c) 2026 Vidora. All rights reserved.

package account_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/users/account"
	"github.com/vidora/vidora/internal/users/auth"
)

// # Test Doubles

type fakeAccountRepository struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (repository *fakeAccountRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repository *fakeAccountRepository) Update(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.users[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.FullName = user.FullName
	stored.AvatarURL = user.AvatarURL
	stored.CoverImageURL = user.CoverImageURL
	return nil
}

type fakeWatchHistoryRepository struct {
	mu      sync.Mutex
	entries map[string]account.WatchEntry // keyed on userID+"|"+videoID
}

func (repository *fakeWatchHistoryRepository) ListByUserID(_ context.Context, userID string, limit int) ([]account.WatchEntry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	result := []account.WatchEntry{}
	for _, entry := range repository.entries {
		if entry.UserID == userID {
			result = append(result, entry)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WatchedAt.After(result[j].WatchedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (repository *fakeWatchHistoryRepository) Record(_ context.Context, entry *account.WatchEntry) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := entry.UserID + "|" + entry.VideoID
	if existing, ok := repository.entries[key]; ok {
		existing.ProgressSeconds = entry.ProgressSeconds
		existing.DurationSeconds = entry.DurationSeconds
		existing.WatchedAt = entry.WatchedAt
		repository.entries[key] = existing
		return nil
	}

	repository.entries[key] = *entry
	return nil
}

type fakeBlobStore struct {
	uploads []string
}

func (store *fakeBlobStore) Upload(_ context.Context, localPath string) (string, error) {
	store.uploads = append(store.uploads, localPath)
	return "https://cdn.vidora.test/" + filepath.Base(localPath), nil
}

// # Fixtures

type accountFixture struct {
	service    *account.Service
	repository *fakeAccountRepository
	history    *fakeWatchHistoryRepository
	blobs      *fakeBlobStore
	userID     string
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	repository := &fakeAccountRepository{users: map[string]*auth.User{
		"user-1": {
			ID:        "user-1",
			Username:  "mai",
			Email:     "mai@vidora.app",
			FullName:  "Mai Tran",
			AvatarURL: "https://cdn.vidora.test/original-avatar.png",
		},
	}}
	history := &fakeWatchHistoryRepository{entries: map[string]account.WatchEntry{}}
	blobs := &fakeBlobStore{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &accountFixture{
		service:    account.NewService(repository, history, blobs, logger),
		repository: repository,
		history:    history,
		blobs:      blobs,
		userID:     "user-1",
	}
}

// # Profile Management

/*
TestService_UpdateDetails changes only the full name.
*/
func TestService_UpdateDetails(t *testing.T) {
	fixture := newAccountFixture(t)

	updated, err := fixture.service.UpdateDetails(context.Background(), fixture.userID, "Mai T. Nguyen")
	require.NoError(t, err)

	assert.Equal(t, "Mai T. Nguyen", updated.FullName)
	assert.Equal(t, "mai", updated.Username, "username must stay immutable")
	assert.Equal(t, "mai@vidora.app", updated.Email, "email must stay immutable")
	assert.Empty(t, updated.PasswordHash)

	stored, err := fixture.repository.FindByID(context.Background(), fixture.userID)
	require.NoError(t, err)
	assert.Equal(t, "Mai T. Nguyen", stored.FullName)
}

/*
TestService_UpdateDetails_UnknownUser surfaces the not-found error.
*/
func TestService_UpdateDetails_UnknownUser(t *testing.T) {
	fixture := newAccountFixture(t)

	_, err := fixture.service.UpdateDetails(context.Background(), "ghost", "Anyone")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 404, ae.HTTPStatus)
}

/*
TestService_UpdateAvatar publishes the image and swaps the URL.
*/
func TestService_UpdateAvatar(t *testing.T) {
	fixture := newAccountFixture(t)

	updated, err := fixture.service.UpdateAvatar(context.Background(), fixture.userID, "/tmp/new-avatar.png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.vidora.test/new-avatar.png", updated.AvatarURL)
	assert.Equal(t, []string{"/tmp/new-avatar.png"}, fixture.blobs.uploads)
}

/*
TestService_UpdateCoverImage publishes the image and sets the URL.
*/
func TestService_UpdateCoverImage(t *testing.T) {
	fixture := newAccountFixture(t)

	updated, err := fixture.service.UpdateCoverImage(context.Background(), fixture.userID, "/tmp/cover.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.vidora.test/cover.jpg", updated.CoverImageURL)
	// The avatar remains untouched by a cover update.
	assert.Equal(t, "https://cdn.vidora.test/original-avatar.png", updated.AvatarURL)
}

// # Watch History

/*
TestService_RecordWatch_AndList round-trips viewing entries newest first.
*/
func TestService_RecordWatch_AndList(t *testing.T) {
	fixture := newAccountFixture(t)

	require.NoError(t, fixture.service.RecordWatch(context.Background(), fixture.userID, account.RecordWatchInput{
		VideoID:         "video-1",
		Title:           "First Video",
		DurationSeconds: 600,
		ProgressSeconds: 60,
	}))

	time.Sleep(time.Millisecond)

	require.NoError(t, fixture.service.RecordWatch(context.Background(), fixture.userID, account.RecordWatchInput{
		VideoID:         "video-2",
		Title:           "Second Video",
		DurationSeconds: 300,
		ProgressSeconds: 30,
	}))

	entries, err := fixture.service.WatchHistory(context.Background(), fixture.userID, 10)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "video-2", entries[0].VideoID)
	assert.Equal(t, "video-1", entries[1].VideoID)
}

/*
TestService_RecordWatch_Upsert keeps one entry per video.
*/
func TestService_RecordWatch_Upsert(t *testing.T) {
	fixture := newAccountFixture(t)

	for _, progress := range []int{30, 90, 240} {
		require.NoError(t, fixture.service.RecordWatch(context.Background(), fixture.userID, account.RecordWatchInput{
			VideoID:         "video-1",
			Title:           "First Video",
			DurationSeconds: 600,
			ProgressSeconds: progress,
		}))
	}

	entries, err := fixture.service.WatchHistory(context.Background(), fixture.userID, 10)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 240, entries[0].ProgressSeconds)
}

/*
TestService_WatchHistory_Limit truncates to the requested count.
*/
func TestService_WatchHistory_Limit(t *testing.T) {
	fixture := newAccountFixture(t)

	for _, videoID := range []string{"a", "b", "c", "d"} {
		require.NoError(t, fixture.service.RecordWatch(context.Background(), fixture.userID, account.RecordWatchInput{
			VideoID: videoID,
			Title:   "Video " + videoID,
		}))
		time.Sleep(time.Millisecond)
	}

	entries, err := fixture.service.WatchHistory(context.Background(), fixture.userID, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
