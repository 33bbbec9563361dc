// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/solarworks/solarworks/db"
	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store"
)

type Store struct {
	client   *mongo.Client
	database *mongo.Database
	now      func() time.Time

	admins   *mongo.Collection
	projects *mongo.Collection
	team     *mongo.Collection
	news     *mongo.Collection
	videos   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects, ensures indexes and returns a ready store.
func Open(ctx context.Context, uri, name string, timeout time.Duration) (*Store, error) {
	client, err := db.ConnectDatabase(ctx, uri, timeout)
	if err != nil {
		return nil, err
	}

	database := client.Database(name)

	if err := db.MigrateDatabase(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return New(client, database), nil
}

func New(client *mongo.Client, database *mongo.Database) *Store {
	return &Store{
		client:   client,
		database: database,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		admins:   database.Collection(db.AdminsCollection),
		projects: database.Collection(db.ProjectsCollection),
		team:     database.Collection(db.TeamMembersCollection),
		news:     database.Collection(db.NewsCollection),
		videos:   database.Collection(db.HomepageVideosCollection),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx, readpref.Primary()), "ping mongodb")
}

func (s *Store) Close(ctx context.Context) error {
	return errors.Wrap(s.client.Disconnect(ctx), "disconnect mongodb")
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", coll.Name())
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", coll.Name())
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var doc T

	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find one %s", coll.Name())
	}
	return &doc, nil
}

func (s *Store) insert(ctx context.Context, coll *mongo.Collection, base *models.BaseModel, doc interface{}) error {
	if base.ID.IsZero() {
		base.ID = primitive.NewObjectID()
	}
	base.CreatedAt = time.Time{}
	base.Touch(s.now())

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return errors.Wrapf(err, "insert %s", coll.Name())
	}
	return nil
}

func (s *Store) replace(ctx context.Context, coll *mongo.Collection, base *models.BaseModel, doc interface{}) error {
	base.UpdatedAt = s.now()

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": base.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return errors.Wrapf(err, "replace %s %s", coll.Name(), base.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete %s %s", coll.Name(), id.Hex())
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func maxDisplayOrder(ctx context.Context, coll *mongo.Collection) (int, error) {
	var doc struct {
		DisplayOrder int `bson:"displayOrder"`
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "displayOrder", Value: -1}}).
		SetProjection(bson.M{"displayOrder": 1})

	err := coll.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "max displayOrder on %s", coll.Name())
	}
	return doc.DisplayOrder, nil
}

func (s *Store) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	return s.insert(ctx, s.admins, &admin.BaseModel, admin)
}

func (s *Store) GetAdminByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return findOne[models.Admin](ctx, s.admins, bson.M{"_id": id})
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return findOne[models.Admin](ctx, s.admins, bson.M{"email": email})
}

func (s *Store) UpsertAdmin(ctx context.Context, admin *models.Admin) error {
	now := s.now()

	update := bson.M{
		"$set": bson.M{
			"password":  admin.Password,
			"name":      admin.Name,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"email":     admin.Email,
			"createdAt": now,
		},
	}

	_, err := s.admins.UpdateOne(ctx, bson.M{"email": admin.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "upsert admin")
	}

	stored, err := s.GetAdminByEmail(ctx, admin.Email)
	if err != nil {
		return err
	}
	*admin = *stored
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.Project](ctx, s.projects, bson.M{}, opts)
}

func (s *Store) GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return findOne[models.Project](ctx, s.projects, bson.M{"_id": id})
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	return s.insert(ctx, s.projects, &project.BaseModel, project)
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	return s.replace(ctx, s.projects, &project.BaseModel, project)
}

func (s *Store) DeleteProject(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.projects, id)
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "createdAt", Value: 1}})
	return findAll[models.TeamMember](ctx, s.team, bson.M{}, opts)
}

func (s *Store) GetTeamMember(ctx context.Context, id primitive.ObjectID) (*models.TeamMember, error) {
	return findOne[models.TeamMember](ctx, s.team, bson.M{"_id": id})
}

func (s *Store) CreateTeamMember(ctx context.Context, member *models.TeamMember) error {
	return s.insert(ctx, s.team, &member.BaseModel, member)
}

func (s *Store) UpdateTeamMember(ctx context.Context, member *models.TeamMember) error {
	return s.replace(ctx, s.team, &member.BaseModel, member)
}

func (s *Store) DeleteTeamMember(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.team, id)
}

func (s *Store) MaxTeamDisplayOrder(ctx context.Context) (int, error) {
	return maxDisplayOrder(ctx, s.team)
}

func (s *Store) SetTeamDisplayOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	res, err := s.team.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"displayOrder": order, "updatedAt": s.now()},
	})
	if err != nil {
		return errors.Wrapf(err, "set displayOrder on team member %s", id.Hex())
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListNews(ctx context.Context) ([]models.News, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "publicationDate", Value: -1}})
	return findAll[models.News](ctx, s.news, bson.M{}, opts)
}

func (s *Store) GetNews(ctx context.Context, id primitive.ObjectID) (*models.News, error) {
	return findOne[models.News](ctx, s.news, bson.M{"_id": id})
}

func (s *Store) CreateNews(ctx context.Context, news *models.News) error {
	return s.insert(ctx, s.news, &news.BaseModel, news)
}

func (s *Store) UpdateNews(ctx context.Context, news *models.News) error {
	return s.replace(ctx, s.news, &news.BaseModel, news)
}

func (s *Store) DeleteNews(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.news, id)
}

func (s *Store) MaxNewsDisplayOrder(ctx context.Context) (int, error) {
	return maxDisplayOrder(ctx, s.news)
}

func (s *Store) ListHomepageVideos(ctx context.Context) ([]models.HomepageVideo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.HomepageVideo](ctx, s.videos, bson.M{}, opts)
}

func (s *Store) GetHomepageVideo(ctx context.Context, id primitive.ObjectID) (*models.HomepageVideo, error) {
	return findOne[models.HomepageVideo](ctx, s.videos, bson.M{"_id": id})
}

func (s *Store) GetActiveHomepageVideo(ctx context.Context) (*models.HomepageVideo, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return findOne[models.HomepageVideo](ctx, s.videos, bson.M{"isActive": true}, opts)
}

func (s *Store) CreateHomepageVideo(ctx context.Context, video *models.HomepageVideo) error {
	return s.insert(ctx, s.videos, &video.BaseModel, video)
}

func (s *Store) UpdateHomepageVideo(ctx context.Context, video *models.HomepageVideo) error {
	return s.replace(ctx, s.videos, &video.BaseModel, video)
}

func (s *Store) DeleteHomepageVideo(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.videos, id)
}

func (s *Store) DeactivateHomepageVideos(ctx context.Context, except primitive.ObjectID) error {
	filter := bson.M{"isActive": true}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}

	_, err := s.videos.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"isActive": false, "updatedAt": s.now()},
	})
	return errors.Wrap(err, "deactivate homepage videos")
}
