package domain

import "time"

type DownloadStatus string

const (
	DownloadSucceeded DownloadStatus = "success"
	DownloadFailed    DownloadStatus = "failed"
)

func (s DownloadStatus) Valid() bool { return s == DownloadSucceeded || s == DownloadFailed }

type Download struct {
	ID           DownloadID     `gorm:"type:uuid;primaryKey" db:"id" json:"_id"`
	AccountID    AccountID      `gorm:"type:uuid;index;not null" db:"account_id" json:"userId"`
	FileName     string         `gorm:"type:text;not null" db:"file_name" json:"fileName"`
	FileVersion  string         `gorm:"type:text;not null" db:"file_version" json:"fileVersion"`
	DownloadDate time.Time      `gorm:"not null" db:"download_date" json:"downloadDate"`
	IPAddress    string         `gorm:"type:text" db:"ip_address" json:"ipAddress,omitempty"`
	DeviceType   string         `gorm:"type:text" db:"device_type" json:"deviceType,omitempty"`
	Status       DownloadStatus `gorm:"type:text;not null" db:"status" json:"status"`
	CreatedAt    time.Time      `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Download) TableName() string { return "downloads" }
