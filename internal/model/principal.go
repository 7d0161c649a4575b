package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleCitizen UserRole = "CITIZEN"
	UserRoleWorker  UserRole = "WORKER"
	UserRoleAdmin   UserRole = "ADMIN"
)

// RoleSource records where a principal's role came from. Roles are resolved
// once at login: either issued by the identity provider or taken from the
// seeded demo account table. They are never re-derived from free text
// afterwards.
type RoleSource string

const (
	RoleSourceIssued RoleSource = "ISSUED"
	RoleSourceDemo   RoleSource = "DEMO"
)

type Principal struct {
	UserID     uuid.UUID
	Role       UserRole
	RoleSource RoleSource
	Name       string
	Ward       string
	DeviceID   string
}

func (p Principal) IsCitizen() bool {
	return p.Role == UserRoleCitizen
}

func (p Principal) IsWorker() bool {
	return p.Role == UserRoleWorker
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
