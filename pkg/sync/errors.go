package sync

import "gitlab.com/tozd/go/errors"

var (
	// ErrNotConnected is returned when a sync operation runs before
	// Connect succeeded.
	ErrNotConnected = errors.New("sync session is not connected")

	// ErrNotAuthenticated is returned when no valid bearer token is held.
	// Callers must not retry; an explicit RequestToken is required.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoRemoteData is returned by pull when the remote range holds no
	// rows at all.
	ErrNoRemoteData = errors.New("no data found in the remote resource")
)
