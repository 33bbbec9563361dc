// Package store defines the persistence contract for site content. The Mongo
// implementation lives in mongostore; memstore backs tests and local runs.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/solarworks/solarworks/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type AdminStore interface {
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	// UpsertAdmin creates the admin or replaces name and password of the
	// existing admin with the same email.
	UpsertAdmin(ctx context.Context, admin *models.Admin) error
}

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id primitive.ObjectID) error
}

type TeamStore interface {
	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
	GetTeamMember(ctx context.Context, id primitive.ObjectID) (*models.TeamMember, error)
	CreateTeamMember(ctx context.Context, member *models.TeamMember) error
	UpdateTeamMember(ctx context.Context, member *models.TeamMember) error
	DeleteTeamMember(ctx context.Context, id primitive.ObjectID) error
	MaxTeamDisplayOrder(ctx context.Context) (int, error)
	SetTeamDisplayOrder(ctx context.Context, id primitive.ObjectID, order int) error
}

type NewsStore interface {
	ListNews(ctx context.Context) ([]models.News, error)
	GetNews(ctx context.Context, id primitive.ObjectID) (*models.News, error)
	CreateNews(ctx context.Context, news *models.News) error
	UpdateNews(ctx context.Context, news *models.News) error
	DeleteNews(ctx context.Context, id primitive.ObjectID) error
	MaxNewsDisplayOrder(ctx context.Context) (int, error)
}

type HomepageVideoStore interface {
	ListHomepageVideos(ctx context.Context) ([]models.HomepageVideo, error)
	GetHomepageVideo(ctx context.Context, id primitive.ObjectID) (*models.HomepageVideo, error)
	GetActiveHomepageVideo(ctx context.Context) (*models.HomepageVideo, error)
	CreateHomepageVideo(ctx context.Context, video *models.HomepageVideo) error
	UpdateHomepageVideo(ctx context.Context, video *models.HomepageVideo) error
	DeleteHomepageVideo(ctx context.Context, id primitive.ObjectID) error
	// DeactivateHomepageVideos clears isActive on every video except the one
	// with the given id. Pass primitive.NilObjectID to clear all of them.
	DeactivateHomepageVideos(ctx context.Context, except primitive.ObjectID) error
}

type Store interface {
	AdminStore
	ProjectStore
	TeamStore
	NewsStore
	HomepageVideoStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
