package service

import (
	"context"

	"xuper/internal/domain"
	"xuper/internal/dto"
)

type DownloadService interface {
	Links(ctx context.Context) ([]dto.DownloadLink, error)
	Record(ctx context.Context, accountID domain.AccountID, r dto.RecordDownloadRequest, ip, ua string) (*dto.DownloadResponse, error)
	History(ctx context.Context, accountID domain.AccountID) ([]dto.DownloadResponse, error)
}
