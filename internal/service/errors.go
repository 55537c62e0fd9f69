package service

import "errors"

// Service-level failure causes. The API layer maps these onto HTTP codes;
// keeping them as sentinels lets callers use errors.Is across wrapping.
var (
	// ErrValidation covers missing or malformed user input, caught before
	// any write.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden means the caller is not a participant of the record.
	ErrForbidden = errors.New("not allowed")

	// ErrCodeNotFound, ErrCodeExpired and ErrCodeUsed are the tagged
	// outcomes of redeeming a connection code. Clients that prefer the
	// collapsed "invalid code" behavior can treat all three alike.
	ErrCodeNotFound = errors.New("connection code not found")
	ErrCodeExpired  = errors.New("connection code expired")
	ErrCodeUsed     = errors.New("connection code already used")

	// ErrAlreadyPaired means one of the two would-be participants already
	// belongs to a connection; each user may hold at most one.
	ErrAlreadyPaired = errors.New("user already has a connection")

	// ErrSelfPairing means a user tried to redeem their own code.
	ErrSelfPairing = errors.New("cannot pair with yourself")

	// ErrNotPaired means the operation needs a connection the user does not
	// have.
	ErrNotPaired = errors.New("no connection for user")
)
