package impl

import (
	"context"
	"strings"
	"time"

	"xuper/internal/domain"
	"xuper/internal/downloads"
	"xuper/internal/dto"
	"xuper/internal/events"
	"xuper/internal/netutil"
	"xuper/internal/observability/metrics"
	"xuper/internal/observability/middleware"
	"xuper/internal/store"

	"github.com/google/uuid"
)

type DownloadServiceImpl struct {
	Store   store.DownloadStore
	Catalog downloads.Source
	Events  events.Publisher
	Now     func() time.Time
}

func NewDownloadServiceImpl(st store.DownloadStore, catalog downloads.Source, publisher events.Publisher) *DownloadServiceImpl {
	return &DownloadServiceImpl{
		Store:   st,
		Catalog: catalog,
		Events:  publisher,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (d *DownloadServiceImpl) Links(ctx context.Context) ([]dto.DownloadLink, error) {
	if d.Catalog == nil {
		return []dto.DownloadLink{}, nil
	}
	return d.Catalog.Links(ctx)
}

// Record stores one download attempt for the calling account. The client IP
// is normalized and the device class is derived from the User-Agent.
func (d *DownloadServiceImpl) Record(ctx context.Context, accountID domain.AccountID, r dto.RecordDownloadRequest, ip, ua string) (*dto.DownloadResponse, error) {
	if blank(r.FileName) || blank(r.FileVersion) {
		return nil, validationErr("fileName", msgDownloadFields)
	}
	status := domain.DownloadStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	if !status.Valid() {
		return nil, validationErr("status", msgDownloadStatus)
	}

	if normalized, ok := netutil.NormalizeIP(ip); ok {
		ip = normalized
	} else {
		ip = ""
	}

	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now()
	}
	rec := &domain.Download{
		ID:           uuid.New(),
		AccountID:    accountID,
		FileName:     strings.TrimSpace(r.FileName),
		FileVersion:  strings.TrimSpace(r.FileVersion),
		DownloadDate: now,
		IPAddress:    ip,
		DeviceType:   netutil.DeviceType(netutil.TruncateUserAgent(ua)),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.Store.Create(ctx, rec); err != nil {
		return nil, err
	}

	metrics.DownloadsRecordedTotal.WithLabelValues(string(status)).Inc()
	middleware.Logger(ctx).Info("download recorded", "download_id", rec.ID, "account_id", accountID, "file", rec.FileName, "status", status)
	if d.Events != nil {
		d.Events.Publish(ctx, events.DownloadRecorded{
			DownloadID: rec.ID.String(),
			AccountID:  accountID.String(),
			FileName:   rec.FileName,
			Status:     string(status),
			At:         now,
		})
	}

	out := dto.NewDownloadResponse(rec)
	return &out, nil
}

func (d *DownloadServiceImpl) History(ctx context.Context, accountID domain.AccountID) ([]dto.DownloadResponse, error) {
	recs, err := d.Store.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DownloadResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, dto.NewDownloadResponse(rec))
	}
	return out, nil
}
