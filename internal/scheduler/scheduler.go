// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/media"
	"github.com/solarworks/solarworks/internal/metrics"
	"github.com/solarworks/solarworks/internal/models"
)

// References lists the documents that may point at stored videos.
type References interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListHomepageVideos(ctx context.Context) ([]models.HomepageVideo, error)
}

// Sweeper deletes video files that no document references. Files younger than
// grace are skipped so an upload whose document is still being written survives.
type Sweeper struct {
	videos   *media.VideoStore
	refs     References
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

func NewSweeper(videos *media.VideoStore, refs References, interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		videos:   videos,
		refs:     refs,
		interval: interval,
		grace:    grace,
		now:      time.Now,
	}
}

// Serve runs SweepOnce every interval until ctx is done.
func (s *Sweeper) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		return suture.ErrDoNotRestart
	}

	logging.Info().Dur("interval", s.interval).Dur("grace", s.grace).Msg("Starting media sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logging.Error().Err(err).Msg("Media sweep failed")
			}
		}
	}
}

func (s *Sweeper) String() string {
	return "media-sweeper"
}

// SweepOnce removes unreferenced files and returns how many were deleted.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	referenced, err := s.referenced(ctx)
	if err != nil {
		return 0, err
	}

	files, err := s.videos.List()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0

	for _, file := range files {
		if _, ok := referenced[file.URL]; ok {
			continue
		}

		if file.ModTime.After(cutoff) {
			continue
		}

		if err := s.videos.Delete(file.URL); err != nil {
			logging.Warn().Err(err).Str("file", file.Name).Msg("Failed to remove orphaned video")
			continue
		}

		removed++
		metrics.SweptMediaFiles.Inc()
		logging.Info().Str("file", file.Name).Msg("Removed orphaned video")
	}

	return removed, nil
}

func (s *Sweeper) referenced(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})

	projects, err := s.refs.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	for _, project := range projects {
		if media.IsLocal(project.Video) {
			refs[project.Video] = struct{}{}
		}
	}

	videos, err := s.refs.ListHomepageVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homepage videos: %w", err)
	}

	for _, video := range videos {
		if media.IsLocal(video.VideoURL) {
			refs[video.VideoURL] = struct{}{}
		}
	}

	return refs, nil
}
