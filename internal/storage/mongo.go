package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/padhy-04/LifeSenseAI/internal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoRepositories connects to uri, ensures indexes and returns one
// collection per resource in database dbName.
func NewMongoRepositories(ctx context.Context, uri, dbName string, logger internal.Logger) (*Repositories, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Errorf("failed to connect to mongo: %v", err)
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Errorf("failed to ping mongo: %v", err)
		return nil, err
	}

	db := client.Database(dbName)
	if err := ensureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Repositories{
		Users:    &mongoUsers{coll: db.Collection("users"), logger: logger},
		Journals: &mongoCollection[internal.JournalEntry]{coll: db.Collection("journals"), logger: logger},
		Meals:    &mongoCollection[internal.MealEntry]{coll: db.Collection("meals"), logger: logger},
		Sleep:    &mongoCollection[internal.SleepEntry]{coll: db.Collection("sleep"), logger: logger},
		Workouts: &mongoCollection[internal.WorkoutEntry]{coll: db.Collection("workouts"), logger: logger},
		closer: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		},
	}, nil
}

func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("storage: users index: %w", err)
	}
	for _, name := range []string{"journals", "meals", "sleep", "workouts"} {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("storage: %s index: %w", name, err)
		}
	}
	return nil
}

// --- users ---

type mongoUsers struct {
	coll   *mongo.Collection
	logger internal.Logger
}

func (m *mongoUsers) CreateUser(ctx context.Context, user *internal.User) error {
	doc := *user
	doc.Email = strings.ToLower(doc.Email)
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		m.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (m *mongoUsers) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoUsers) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return m.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (m *mongoUsers) findOne(ctx context.Context, filter bson.M) (*internal.User, error) {
	var u internal.User
	if err := m.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		m.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	return &u, nil
}

// --- entries ---

type mongoCollection[E internal.Record] struct {
	coll   *mongo.Collection
	logger internal.Logger
}

func ownedBy(userID, id string) bson.M {
	return bson.M{"_id": id, "userId": userID}
}

func (m *mongoCollection[E]) Create(ctx context.Context, entry E) error {
	if _, err := m.coll.InsertOne(ctx, entry); err != nil {
		m.logger.Errorf("failed to insert into %s: %v", m.coll.Name(), err)
		return err
	}
	return nil
}

func (m *mongoCollection[E]) List(ctx context.Context, userID string) ([]E, error) {
	cur, err := m.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		m.logger.Errorf("failed to query %s: %v", m.coll.Name(), err)
		return nil, err
	}
	out := make([]E, 0)
	if err := cur.All(ctx, &out); err != nil {
		m.logger.Errorf("failed to decode %s: %v", m.coll.Name(), err)
		return nil, err
	}
	return out, nil
}

func (m *mongoCollection[E]) Get(ctx context.Context, userID, id string) (E, error) {
	var e E
	if err := m.coll.FindOne(ctx, ownedBy(userID, id)).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return e, ErrNotFound
		}
		m.logger.Errorf("failed to query %s: %v", m.coll.Name(), err)
		return e, err
	}
	return e, nil
}

func (m *mongoCollection[E]) Update(ctx context.Context, entry E) error {
	res, err := m.coll.ReplaceOne(ctx, ownedBy(entry.OwnerID(), entry.RecordID()), entry)
	if err != nil {
		m.logger.Errorf("failed to update %s: %v", m.coll.Name(), err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoCollection[E]) Delete(ctx context.Context, userID, id string) error {
	res, err := m.coll.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		m.logger.Errorf("failed to delete from %s: %v", m.coll.Name(), err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*mongoUsers)(nil)
var _ JournalRepository = (*mongoCollection[internal.JournalEntry])(nil)
var _ MealRepository = (*mongoCollection[internal.MealEntry])(nil)
var _ SleepRepository = (*mongoCollection[internal.SleepEntry])(nil)
var _ WorkoutRepository = (*mongoCollection[internal.WorkoutEntry])(nil)
