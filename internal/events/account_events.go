package events

import "time"

type AccountRegistered struct {
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	At        time.Time `json:"at"`
}

func (AccountRegistered) Name() string { return "account.registered" }

type AccountDeleted struct {
	AccountID string    `json:"accountId"`
	At        time.Time `json:"at"`
}

func (AccountDeleted) Name() string { return "account.deleted" }

type DownloadRecorded struct {
	DownloadID string    `json:"downloadId"`
	AccountID  string    `json:"accountId"`
	FileName   string    `json:"fileName"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}

func (DownloadRecorded) Name() string { return "download.recorded" }
