package application

import "context"

// PasswordHasher is satisfied by helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) (bool, error)
}

// JobPublisher enqueues a JSON job; helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// SessionTerminator destroys every session of one user.
type SessionTerminator interface {
	TerminateAll(ctx context.Context, userID string) error
}
