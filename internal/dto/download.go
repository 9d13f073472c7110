package dto

import (
	"time"

	"xuper/internal/domain"
)

type DownloadLink struct {
	FileName    string `json:"fileName"`
	FileVersion string `json:"fileVersion"`
	Platform    string `json:"platform"`
	URL         string `json:"url"`
}

type DownloadLinksResponse struct {
	Downloads []DownloadLink `json:"downloads"`
}

type RecordDownloadRequest struct {
	FileName    string `json:"fileName"`
	FileVersion string `json:"fileVersion"`
	Status      string `json:"status"`
}

type DownloadResponse struct {
	ID           string    `json:"_id"`
	AccountID    string    `json:"userId"`
	FileName     string    `json:"fileName"`
	FileVersion  string    `json:"fileVersion"`
	DownloadDate time.Time `json:"downloadDate"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	DeviceType   string    `json:"deviceType,omitempty"`
	Status       string    `json:"status"`
}

type DownloadHistoryResponse struct {
	Downloads []DownloadResponse `json:"downloads"`
}

func NewDownloadResponse(d *domain.Download) DownloadResponse {
	return DownloadResponse{
		ID:           d.ID.String(),
		AccountID:    d.AccountID.String(),
		FileName:     d.FileName,
		FileVersion:  d.FileVersion,
		DownloadDate: d.DownloadDate,
		IPAddress:    d.IPAddress,
		DeviceType:   d.DeviceType,
		Status:       string(d.Status),
	}
}
