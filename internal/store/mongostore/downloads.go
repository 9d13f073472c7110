package mongostore

import (
	"context"
	"time"

	"xuper/internal/domain"
	"xuper/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type downloadDoc struct {
	ID           any       `bson:"_id"`
	UserID       any       `bson:"userId"`
	FileName     string    `bson:"fileName"`
	FileVersion  string    `bson:"fileVersion"`
	DownloadDate time.Time `bson:"downloadDate"`
	IPAddress    string    `bson:"ipAddress,omitempty"`
	DeviceType   string    `bson:"deviceType,omitempty"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type DownloadStore struct {
	coll *mongo.Collection
}

var _ store.DownloadStore = (*DownloadStore)(nil)

func (s *DownloadStore) Create(ctx context.Context, d *domain.Download) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	if d.DownloadDate.IsZero() {
		d.DownloadDate = now
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := s.coll.InsertOne(ctx, downloadDoc{
		ID:           d.ID.String(),
		UserID:       d.AccountID.String(),
		FileName:     d.FileName,
		FileVersion:  d.FileVersion,
		DownloadDate: d.DownloadDate,
		IPAddress:    d.IPAddress,
		DeviceType:   d.DeviceType,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	})
	return err
}

func (s *DownloadStore) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*domain.Download, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"userId": matchID(accountID)},
		options.Find().SetSort(bson.D{{Key: "downloadDate", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []downloadDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Download, 0, len(docs))
	for _, d := range docs {
		id, err := parseID(d.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.Download{
			ID:           id,
			AccountID:    accountID,
			FileName:     d.FileName,
			FileVersion:  d.FileVersion,
			DownloadDate: d.DownloadDate,
			IPAddress:    d.IPAddress,
			DeviceType:   d.DeviceType,
			Status:       domain.DownloadStatus(d.Status),
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		})
	}
	return out, nil
}

func (s *DownloadStore) DeleteByAccount(ctx context.Context, accountID domain.AccountID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"userId": matchID(accountID)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
