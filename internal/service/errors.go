package service

import "errors"

var (
	// ErrStoreUnavailable is returned by operations that cannot proceed
	// without storage (room creation, joins, mutations). Read and subscribe
	// paths degrade to empty results instead.
	ErrStoreUnavailable = errors.New("storage is not configured")

	ErrRoomNotFound = errors.New("room not found")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")

	// ErrPermissionDenied reports a denied mutation (non-host room delete,
	// non-owner game removal). The underlying transaction still commits the
	// unchanged value; the caller decides whether to surface the denial.
	ErrPermissionDenied = errors.New("permission denied")

	ErrInvalidCredentials = errors.New("invalid credentials")
)
