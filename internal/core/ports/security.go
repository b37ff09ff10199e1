package ports

import "context"

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil only when password matches hash.
	Compare(hash, password string) error
}

// TokenIssuer signs and verifies bearer credentials carrying a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	// Verify returns the user id encoded in a valid, unexpired token.
	Verify(token string) (string, error)
}

// LoginLimiter tracks failed logins per key (the normalized email).
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
