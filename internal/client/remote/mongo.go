package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Dial configures a client for uri without waiting for the server, so it
// succeeds while offline. Operations fail with client.ErrUnavailable until
// the server is reachable.
func Dial(ctx context.Context, uri, database string) (*MongoStore, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return &MongoStore{client: c, db: c.Database(database)}, nil
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*MongoStore, error) {
	s, err := Dial(ctx, uri, database)
	if err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w: %w", client.ErrUnavailable, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) FetchAll(ctx context.Context, collection string) ([]models.RemoteUserRecord, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w: %w", collection, common.ErrFetch, classify(err))
	}
	defer cur.Close(ctx)

	result := []models.RemoteUserRecord{}
	for cur.Next(ctx) {
		rec, err := decodeUser(cur.Current)
		if err != nil {
			return nil, fmt.Errorf("decode %s document: %w: %w", collection, common.ErrFetch, err)
		}
		result = append(result, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w: %w", collection, common.ErrFetch, classify(err))
	}

	return result, nil
}

func (s *MongoStore) Upsert(ctx context.Context, collection, remoteID string, fields map[string]any) error {
	if remoteID == "" {
		return fmt.Errorf("upsert %s: empty id: %w", collection, common.ErrInvalidInput)
	}

	_, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": remoteID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, remoteID, classify(err))
	}
	return nil
}

type userDocument struct {
	ID      any    `bson:"_id"`
	UID     string `bson:"uid"`
	Name    string `bson:"name"`
	Email   string `bson:"email"`
	Contact string `bson:"contact"`
}

// decodeUser maps a raw document to a RemoteUserRecord. Documents written
// without a uid field fall back to their _id.
func decodeUser(raw bson.Raw) (models.RemoteUserRecord, error) {
	var doc userDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return models.RemoteUserRecord{}, err
	}

	uid := doc.UID
	if uid == "" {
		switch id := doc.ID.(type) {
		case string:
			uid = id
		case primitive.ObjectID:
			uid = id.Hex()
		}
	}

	return models.RemoteUserRecord{
		RemoteID: uid,
		Name:     doc.Name,
		Email:    doc.Email,
		Contact:  doc.Contact,
	}, nil
}

func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", client.ErrUnavailable, err)
	}
	return err
}
