package repository

import "errors"

var (
	// ErrRoleInUse is returned when deleting a role still referenced by a principal.
	ErrRoleInUse = errors.New("role is referenced by principals")
	// ErrStationInUse is returned when deleting a station that still has tickets.
	ErrStationInUse = errors.New("station is referenced by tickets")
)
