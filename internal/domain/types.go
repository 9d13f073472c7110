package domain

import "github.com/google/uuid"

type AccountID = uuid.UUID
type DownloadID = uuid.UUID

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }
