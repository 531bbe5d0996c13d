package ports

import "context"

// TrustLocker serializes trust-score mutation per user. Every writer of
// User.TrustScore acquires the user's lock before reading the score and
// releases it after the matching TrustHistory entry is appended, which
// keeps the latest history entry equal to the live score under concurrency.
type TrustLocker interface {
	Lock(ctx context.Context, userID string) (release func(), err error)
}
