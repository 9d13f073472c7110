package mongostore

import (
	"context"
	"errors"
	"time"

	"xuper/internal/domain"
	"xuper/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountDoc struct {
	ID        any       `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Role      string    `bson:"role"`
	Verified  bool      `bson:"verified"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toAccountDoc(a *domain.Account) accountDoc {
	return accountDoc{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		Password:  a.PasswordHash,
		Role:      string(a.Role),
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() (*domain.Account, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
		Verified:     d.Verified,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type AccountStore struct {
	coll *mongo.Collection
}

var _ store.AccountStore = (*AccountStore)(nil)

func (s *AccountStore) Create(ctx context.Context, acc *domain.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, toAccountDoc(acc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	return s.findOne(ctx, bson.M{"_id": matchID(id)})
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *AccountStore) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrRecordNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		acc, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}

func (s *AccountStore) Delete(ctx context.Context, id domain.AccountID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": matchID(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}
