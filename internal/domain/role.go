package domain

import "time"

// Role is a named bundle of permission bits assigned to principals.
type Role struct {
	ID          int64
	Name        string
	Permissions PermissionSet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
