// Package memstore is an in-process store.Store used by tests and by
// DB_DRIVER=memory for running the API without MongoDB. Data does not survive
// a restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store"
)

type collection[T any] struct {
	docs map[primitive.ObjectID]T
	base func(*T) *models.BaseModel
}

func newCollection[T any](base func(*T) *models.BaseModel) *collection[T] {
	return &collection[T]{docs: make(map[primitive.ObjectID]T), base: base}
}

func (c *collection[T]) insert(doc *T, now time.Time) {
	b := c.base(doc)
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt = time.Time{}
	b.Touch(now)
	c.docs[b.ID] = *doc
}

func (c *collection[T]) get(id primitive.ObjectID) (*T, error) {
	doc, ok := c.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &doc, nil
}

func (c *collection[T]) replace(doc *T, now time.Time) error {
	b := c.base(doc)
	existing, ok := c.docs[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	b.CreatedAt = c.base(&existing).CreatedAt
	b.UpdatedAt = now
	c.docs[b.ID] = *doc
	return nil
}

func (c *collection[T]) remove(id primitive.ObjectID) error {
	if _, ok := c.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

// all returns the documents ordered by id, which follows insertion time.
func (c *collection[T]) all() []T {
	out := make([]T, 0, len(c.docs))
	for _, doc := range c.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := c.base(&out[i]).ID, c.base(&out[j]).ID
		return a.Hex() < b.Hex()
	})
	return out
}

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	admins   *collection[models.Admin]
	projects *collection[models.Project]
	team     *collection[models.TeamMember]
	news     *collection[models.News]
	videos   *collection[models.HomepageVideo]
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		admins:   newCollection(func(a *models.Admin) *models.BaseModel { return &a.BaseModel }),
		projects: newCollection(func(p *models.Project) *models.BaseModel { return &p.BaseModel }),
		team:     newCollection(func(m *models.TeamMember) *models.BaseModel { return &m.BaseModel }),
		news:     newCollection(func(n *models.News) *models.BaseModel { return &n.BaseModel }),
		videos:   newCollection(func(v *models.HomepageVideo) *models.BaseModel { return &v.BaseModel }),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}

func (s *Store) CreateAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.admins.docs {
		if strings.EqualFold(existing.Email, admin.Email) {
			return store.ErrDuplicate
		}
	}

	s.admins.insert(admin, s.now())
	return nil
}

func (s *Store) GetAdminByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins.get(id)
}

func (s *Store) GetAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, admin := range s.admins.docs {
		if strings.EqualFold(admin.Email, email) {
			found := admin
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.admins.docs {
		if strings.EqualFold(existing.Email, admin.Email) {
			admin.ID = existing.ID
			return s.admins.replace(admin, s.now())
		}
	}

	s.admins.insert(admin, s.now())
	return nil
}

func (s *Store) ListProjects(context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := s.projects.all()
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *Store) GetProject(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects.get(id)
}

func (s *Store) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects.insert(project, s.now())
	return nil
}

func (s *Store) UpdateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.replace(project, s.now())
}

func (s *Store) DeleteProject(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.remove(id)
}

func (s *Store) ListTeamMembers(context.Context) ([]models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.team.all()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].DisplayOrder < members[j].DisplayOrder
	})
	return members, nil
}

func (s *Store) GetTeamMember(_ context.Context, id primitive.ObjectID) (*models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.team.get(id)
}

func (s *Store) CreateTeamMember(_ context.Context, member *models.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.team.insert(member, s.now())
	return nil
}

func (s *Store) UpdateTeamMember(_ context.Context, member *models.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team.replace(member, s.now())
}

func (s *Store) DeleteTeamMember(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team.remove(id)
}

func (s *Store) MaxTeamDisplayOrder(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := 0
	for _, member := range s.team.docs {
		if member.DisplayOrder > highest {
			highest = member.DisplayOrder
		}
	}
	return highest, nil
}

func (s *Store) SetTeamDisplayOrder(_ context.Context, id primitive.ObjectID, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.team.get(id)
	if err != nil {
		return err
	}
	member.DisplayOrder = order
	return s.team.replace(member, s.now())
}

func (s *Store) ListNews(context.Context) ([]models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	news := s.news.all()
	sort.SliceStable(news, func(i, j int) bool {
		if news[i].DisplayOrder != news[j].DisplayOrder {
			return news[i].DisplayOrder < news[j].DisplayOrder
		}
		return news[i].PublicationDate.After(news[j].PublicationDate)
	})
	return news, nil
}

func (s *Store) GetNews(_ context.Context, id primitive.ObjectID) (*models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.news.get(id)
}

func (s *Store) CreateNews(_ context.Context, news *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news.insert(news, s.now())
	return nil
}

func (s *Store) UpdateNews(_ context.Context, news *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.news.replace(news, s.now())
}

func (s *Store) DeleteNews(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.news.remove(id)
}

func (s *Store) MaxNewsDisplayOrder(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := 0
	for _, news := range s.news.docs {
		if news.DisplayOrder > highest {
			highest = news.DisplayOrder
		}
	}
	return highest, nil
}

func (s *Store) ListHomepageVideos(context.Context) ([]models.HomepageVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	videos := s.videos.all()
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}

func (s *Store) GetHomepageVideo(_ context.Context, id primitive.ObjectID) (*models.HomepageVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videos.get(id)
}

func (s *Store) GetActiveHomepageVideo(context.Context) (*models.HomepageVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active *models.HomepageVideo
	for _, video := range s.videos.all() {
		if !video.IsActive {
			continue
		}
		if active == nil || video.UpdatedAt.After(active.UpdatedAt) {
			v := video
			active = &v
		}
	}

	if active == nil {
		return nil, store.ErrNotFound
	}
	return active, nil
}

func (s *Store) CreateHomepageVideo(_ context.Context, video *models.HomepageVideo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos.insert(video, s.now())
	return nil
}

func (s *Store) UpdateHomepageVideo(_ context.Context, video *models.HomepageVideo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videos.replace(video, s.now())
}

func (s *Store) DeleteHomepageVideo(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videos.remove(id)
}

func (s *Store) DeactivateHomepageVideos(_ context.Context, except primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, video := range s.videos.docs {
		if id == except || !video.IsActive {
			continue
		}
		video.IsActive = false
		video.UpdatedAt = now
		s.videos.docs[id] = video
	}
	return nil
}
