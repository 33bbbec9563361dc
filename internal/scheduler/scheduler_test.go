package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"

	"github.com/solarworks/solarworks/internal/media"
	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store/memstore"
)

func writeVideo(t *testing.T, vs *media.VideoStore, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(vs.Dir(), name)
	require.NoError(t, os.WriteFile(path, []byte("frames"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return media.VideoURLPrefix + name
}

func TestSweepOnce(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	vs, err := media.NewVideoStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)

	projectVideo := writeVideo(t, vs, "project.mp4", old)
	heroVideo := writeVideo(t, vs, "hero.mp4", old)
	orphan := writeVideo(t, vs, "orphan.mp4", old)
	fresh := writeVideo(t, vs, "fresh.mp4", time.Now())

	require.NoError(t, s.CreateProject(ctx, &models.Project{Name: "P", Location: "L", Description: "D", Video: projectVideo}))
	require.NoError(t, s.CreateHomepageVideo(ctx, &models.HomepageVideo{VideoURL: heroVideo}))
	require.NoError(t, s.CreateHomepageVideo(ctx, &models.HomepageVideo{VideoURL: "https://cdn.example/remote.mp4"}))

	sweeper := NewSweeper(vs, s, time.Minute, time.Hour)

	removed, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	files, err := vs.List()
	require.NoError(t, err)

	var urls []string
	for _, f := range files {
		urls = append(urls, f.URL)
	}
	assert.ElementsMatch(t, []string{projectVideo, heroVideo, fresh}, urls)
	assert.NotContains(t, urls, orphan)
}

func TestServe_DisabledDoesNotRestart(t *testing.T) {
	vs, err := media.NewVideoStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	err = NewSweeper(vs, memstore.New(), 0, time.Hour).Serve(context.Background())
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
}

func TestServe_StopsOnCancel(t *testing.T) {
	vs, err := media.NewVideoStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSweeper(vs, memstore.New(), 10*time.Millisecond, time.Hour).Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
