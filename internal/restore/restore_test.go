package restore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/store"
)

type recordingPoster struct {
	posts []model.PostNotification
	err   error
}

func (p *recordingPoster) Post(_ context.Context, cmd model.PostNotification) error {
	if p.err != nil {
		return p.err
	}
	p.posts = append(p.posts, cmd)
	return nil
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insertRecord(t *testing.T, s *store.SQLiteStore, title string) *model.BlockedNotification {
	t.Helper()
	ctx := context.Background()
	id, err := s.InsertBlocked(ctx, model.BlockedNotification{
		PackageName: "com.shop",
		AppName:     "Shop",
		Title:       title,
		Content:     "50% off",
	})
	require.NoError(t, err)
	rec, err := s.GetBlocked(ctx, id)
	require.NoError(t, err)
	return rec
}

func TestRestore_MarksAndPosts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rec := insertRecord(t, s, "Big Sale")
	poster := &recordingPoster{}

	require.NoError(t, NewService(s, poster, nil).Restore(ctx, *rec))

	got, err := s.GetBlocked(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRestored)

	require.Len(t, poster.posts, 1)
	post := poster.posts[0]
	assert.Equal(t, Channel, post.Channel)
	assert.Equal(t, "restored-"+rec.ID, post.ID)
	assert.Equal(t, "Big Sale", post.Title)
	assert.Equal(t, "50% off", post.Content)
	assert.Equal(t, "Restored from Shop", post.Subtext)
}

func TestRestore_TwiceIsHarmless(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rec := insertRecord(t, s, "Big Sale")
	poster := &recordingPoster{}
	svc := NewService(s, poster, nil)

	require.NoError(t, svc.Restore(ctx, *rec))
	require.NoError(t, svc.Restore(ctx, *rec))

	got, _ := s.GetBlocked(ctx, rec.ID)
	assert.True(t, got.IsRestored)
	assert.Len(t, poster.posts, 2)
	assert.Equal(t, poster.posts[0].ID, poster.posts[1].ID)
}

func TestRestore_PostFailureKeepsMark(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rec := insertRecord(t, s, "Big Sale")
	boom := errors.New("no permission")

	err := NewService(s, &recordingPoster{err: boom}, nil).Restore(ctx, *rec)

	var pe *PostError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, boom)
	got, _ := s.GetBlocked(ctx, rec.ID)
	assert.True(t, got.IsRestored)
}

func TestRestore_DistinctRecordsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := insertRecord(t, s, "one")
	b := insertRecord(t, s, "two")
	poster := &recordingPoster{}
	svc := NewService(s, poster, nil)

	require.NoError(t, svc.Restore(ctx, *a))
	require.NoError(t, svc.Restore(ctx, *b))

	require.Len(t, poster.posts, 2)
	assert.NotEqual(t, poster.posts[0].ID, poster.posts[1].ID)
}

func TestRestoreByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rec := insertRecord(t, s, "Big Sale")
	poster := &recordingPoster{}
	svc := NewService(s, poster, nil)

	got, err := svc.RestoreByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRestored)

	_, err = svc.RestoreByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNotification_SubtextFallsBackToPackage(t *testing.T) {
	post := Notification(model.BlockedNotification{ID: "x", PackageName: "com.chat"})
	assert.Equal(t, "Restored from com.chat", post.Subtext)
}
