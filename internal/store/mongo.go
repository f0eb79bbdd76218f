package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/exercise-tracker/internal/models"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	CreatedAt time.Time          `bson:"created_at"`
}

type exerciseDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Description string             `bson:"description"`
	Duration    int                `bson:"duration"`
	Date        time.Time          `bson:"date"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d exerciseDoc) model() models.Exercise {
	return models.Exercise{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Description: d.Description,
		Duration:    d.Duration,
		Date:        d.Date.UTC(),
		CreatedAt:   d.CreatedAt,
	}
}

// ObjectIDs only order by second across processes, so created_at leads.
var creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// MongoStore keeps users and exercises in two MongoDB collections.
type MongoStore struct {
	users     *mongo.Collection
	exercises *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:     db.Collection("users"),
		exercises: db.Collection("exercises"),
	}
}

// Migrate creates the indexes the log query relies on.
func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.exercises.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, username string) (*models.User, error) {
	doc := userDoc{Username: username, CreatedAt: time.Now().UTC()}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return &models.User{ID: oid.Hex(), Username: username}, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(creationOrder).
		SetProjection(bson.D{{Key: "username", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, models.User{ID: d.ID.Hex(), Username: d.Username})
	}
	return users, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var d userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &models.User{ID: d.ID.Hex(), Username: d.Username}, nil
}

// AddExercise inserts ex and fills in its ID and CreatedAt.
func (s *MongoStore) AddExercise(ctx context.Context, ex *models.Exercise) error {
	uid, err := primitive.ObjectIDFromHex(ex.UserID)
	if err != nil {
		return ErrNotFound
	}
	ex.CreatedAt = time.Now().UTC()
	res, err := s.exercises.InsertOne(ctx, exerciseDoc{
		UserID:      uid,
		Description: ex.Description,
		Duration:    ex.Duration,
		Date:        ex.Date,
		CreatedAt:   ex.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("mongo insert exercise: %w", err)
	}
	ex.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// ListExercises returns a user's exercises in insertion order.
func (s *MongoStore) ListExercises(ctx context.Context, userID string, f models.LogFilter) ([]models.Exercise, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	filter := bson.M{"user_id": uid}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lte"] = *f.To
		}
		filter["date"] = rng
	}
	opts := options.Find().SetSort(creationOrder)
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := s.exercises.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find exercises: %w", err)
	}
	defer cur.Close(ctx)

	var docs []exerciseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode exercises: %w", err)
	}
	out := make([]models.Exercise, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
