package mongostore

import (
	"context"
	"errors"
	"time"

	"xuper/internal/domain"
	"xuper/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type verificationDoc struct {
	Email     string    `bson:"email"`
	CodeHash  string    `bson:"codeHash"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type VerificationStore struct {
	coll *mongo.Collection
}

var _ store.VerificationStore = (*VerificationStore)(nil)

func (s *VerificationStore) Upsert(ctx context.Context, v *domain.VerificationCode) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"codeHash":  v.CodeHash,
			"expiresAt": v.ExpiresAt,
			"updatedAt": v.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": v.CreatedAt,
		},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"email": v.Email}, update, options.Update().SetUpsert(true))
	return err
}

func (s *VerificationStore) GetByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	var doc verificationDoc
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrRecordNotFound
		}
		return nil, err
	}
	return &domain.VerificationCode{
		Email:     doc.Email,
		CodeHash:  doc.CodeHash,
		ExpiresAt: doc.ExpiresAt.UTC(),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}, nil
}

func (s *VerificationStore) Delete(ctx context.Context, email string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}

// PurgeExpired is normally redundant with the TTL index; it exists so callers
// do not have to wait for the server's TTL monitor.
func (s *VerificationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
