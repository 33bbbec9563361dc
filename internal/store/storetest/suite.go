// Package storetest holds a behavioural suite every store.Store must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store"
)

// Run executes the suite; newStore must return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("admins", func(t *testing.T) { testAdmins(t, newStore(t)) })
	t.Run("projects", func(t *testing.T) { testProjects(t, newStore(t)) })
	t.Run("team", func(t *testing.T) { testTeam(t, newStore(t)) })
	t.Run("news", func(t *testing.T) { testNews(t, newStore(t)) })
	t.Run("homepage videos", func(t *testing.T) { testHomepageVideos(t, newStore(t)) })
}

func testAdmins(t *testing.T, s store.Store) {
	ctx := context.Background()

	admin := &models.Admin{Email: "ops@solar.example", Password: "hash", Name: "Ops"}
	require.NoError(t, s.CreateAdmin(ctx, admin))
	require.False(t, admin.ID.IsZero())

	err := s.CreateAdmin(ctx, &models.Admin{Email: "ops@solar.example", Password: "x", Name: "Dup"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	byEmail, err := s.GetAdminByEmail(ctx, "ops@solar.example")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byEmail.ID)

	byID, err := s.GetAdminByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ops", byID.Name)

	_, err = s.GetAdminByEmail(ctx, "nobody@solar.example")
	assert.ErrorIs(t, err, store.ErrNotFound)

	upserted := &models.Admin{Email: "ops@solar.example", Password: "new-hash", Name: "Renamed"}
	require.NoError(t, s.UpsertAdmin(ctx, upserted))
	assert.Equal(t, admin.ID, upserted.ID)

	reloaded, err := s.GetAdminByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.Password)
	assert.Equal(t, "Renamed", reloaded.Name)

	fresh := &models.Admin{Email: "new@solar.example", Password: "h", Name: "New"}
	require.NoError(t, s.UpsertAdmin(ctx, fresh))
	assert.False(t, fresh.ID.IsZero())
}

func testProjects(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := &models.Project{Name: "Rooftop", Location: "Tunis", Description: "50kWp", Challenges: []string{"shade"}}
	require.NoError(t, s.CreateProject(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &models.Project{Name: "Farm", Location: "Sfax", Description: "2MWp"}
	require.NoError(t, s.CreateProject(ctx, second))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	got, err := s.GetProject(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shade"}, got.Challenges)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt), "returned createdAt matches the stored value")

	got.Name = "Rooftop II"
	require.NoError(t, s.UpdateProject(ctx, got))

	updated, err := s.GetProject(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rooftop II", updated.Name)
	assert.True(t, got.UpdatedAt.Equal(updated.UpdatedAt), "returned updatedAt matches the stored value")
	assert.WithinDuration(t, first.CreatedAt, updated.CreatedAt, time.Millisecond)

	missing := &models.Project{Name: "ghost"}
	missing.ID = primitive.NewObjectID()
	assert.ErrorIs(t, s.UpdateProject(ctx, missing), store.ErrNotFound)

	require.NoError(t, s.DeleteProject(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteProject(ctx, first.ID), store.ErrNotFound)

	_, err = s.GetProject(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testTeam(t *testing.T, s store.Store) {
	ctx := context.Background()

	highest, err := s.MaxTeamDisplayOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, highest)

	a := &models.TeamMember{Name: "A", Role: "Engineer", Bio: "bio", DisplayOrder: 2}
	b := &models.TeamMember{Name: "B", Role: "Designer", Bio: "bio", DisplayOrder: 1}
	require.NoError(t, s.CreateTeamMember(ctx, a))
	require.NoError(t, s.CreateTeamMember(ctx, b))

	highest, err = s.MaxTeamDisplayOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, highest)

	list, err := s.ListTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Name)

	require.NoError(t, s.SetTeamDisplayOrder(ctx, b.ID, 5))
	list, err = s.ListTeamMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", list[0].Name)

	assert.ErrorIs(t, s.SetTeamDisplayOrder(ctx, primitive.NewObjectID(), 1), store.ErrNotFound)

	require.NoError(t, s.DeleteTeamMember(ctx, a.ID))
	_, err = s.GetTeamMember(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testNews(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	older := &models.News{Title: "Older", Summary: "s", FullText: "f", PublicationDate: now.Add(-48 * time.Hour), DisplayOrder: 1}
	newer := &models.News{Title: "Newer", Summary: "s", FullText: "f", PublicationDate: now, DisplayOrder: 1}
	first := &models.News{Title: "Pinned", Summary: "s", FullText: "f", PublicationDate: now.Add(-96 * time.Hour), DisplayOrder: 0}
	require.NoError(t, s.CreateNews(ctx, older))
	require.NoError(t, s.CreateNews(ctx, newer))
	require.NoError(t, s.CreateNews(ctx, first))

	list, err := s.ListNews(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Pinned", "Newer", "Older"}, []string{list[0].Title, list[1].Title, list[2].Title})

	highest, err := s.MaxNewsDisplayOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, highest)

	got, err := s.GetNews(ctx, newer.ID)
	require.NoError(t, err)
	got.AdditionalImages = []string{"https://img.example/1.jpg"}
	require.NoError(t, s.UpdateNews(ctx, got))

	reloaded, err := s.GetNews(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, reloaded.AdditionalImages)

	require.NoError(t, s.DeleteNews(ctx, newer.ID))
	assert.ErrorIs(t, s.DeleteNews(ctx, newer.ID), store.ErrNotFound)
}

func testHomepageVideos(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetActiveHomepageVideo(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	one := &models.HomepageVideo{VideoURL: "/videos/one.mp4", IsActive: true}
	two := &models.HomepageVideo{VideoURL: "/videos/two.mp4", IsActive: true}
	require.NoError(t, s.CreateHomepageVideo(ctx, one))
	require.NoError(t, s.CreateHomepageVideo(ctx, two))

	require.NoError(t, s.DeactivateHomepageVideos(ctx, two.ID))

	active, err := s.GetActiveHomepageVideo(ctx)
	require.NoError(t, err)
	assert.Equal(t, two.ID, active.ID)

	reloaded, err := s.GetHomepageVideo(ctx, one.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	require.NoError(t, s.DeactivateHomepageVideos(ctx, primitive.NilObjectID))
	_, err = s.GetActiveHomepageVideo(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.ListHomepageVideos(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.DeleteHomepageVideo(ctx, one.ID))
	assert.ErrorIs(t, s.DeleteHomepageVideo(ctx, one.ID), store.ErrNotFound)
}
