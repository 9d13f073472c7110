// Package mongostore keeps accounts, verification codes and download records
// in MongoDB. Uniqueness of emails and expiry of verification codes are
// enforced by indexes created in EnsureIndexes.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection      = "users"
	verificationsCollection = "emailverifications"
	downloadsCollection     = "downloads"
)

type MongoDB struct {
	Client *mongo.Client
	URL    string
	Name   string
}

func NewMongoDB(url, database string) *MongoDB {
	return &MongoDB{URL: url, Name: database}
}

func (m *MongoDB) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.URL))
	if err != nil {
		return err
	}
	m.Client = client
	return m.Client.Ping(ctx, nil)
}

func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) Database() *mongo.Database { return m.Client.Database(m.Name) }

// Store groups the collection-backed stores of a single database.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store { return &Store{db: db} }

func (s *Store) Accounts() *AccountStore {
	return &AccountStore{coll: s.db.Collection(accountsCollection)}
}

func (s *Store) Verifications() *VerificationStore {
	return &VerificationStore{coll: s.db.Collection(verificationsCollection)}
}

func (s *Store) Downloads() *DownloadStore {
	return &DownloadStore{coll: s.db.Collection(downloadsCollection)}
}

// EnsureIndexes creates the unique email indexes and the TTL index that
// removes verification codes once expiresAt has passed.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.db.Collection(accountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ux_users_email"),
	}); err != nil {
		return err
	}

	if _, err := s.db.Collection(verificationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_emailverifications_email"),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_emailverifications_expires_at"),
		},
	}); err != nil {
		return err
	}

	_, err := s.db.Collection(downloadsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "downloadDate", Value: -1}},
		Options: options.Index().SetName("ix_downloads_user"),
	})
	return err
}
