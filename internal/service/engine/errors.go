package engine

import "errors"

// Award validation errors. Storage failures are not translated: they
// propagate wrapped so the completion flow can fail the whole request.
var (
	// ErrInvalidAmount rejects non-positive XP amounts. The award path only
	// grants, never deducts.
	ErrInvalidAmount = errors.New("xp amount must be positive")

	// ErrInvalidSource rejects completion sources outside habit/goal/challenge.
	ErrInvalidSource = errors.New("unknown completion source")

	// ErrUserNotFound means the user does not exist at award time.
	ErrUserNotFound = errors.New("user not found")
)
