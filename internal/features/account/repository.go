// Package account — repository.go defines the storage contract for the
// user aggregate and the retry helper every mutation goes through.
package account

import (
	"context"
	"errors"
	"time"

	"seashell.io/investment-backend/internal/common"
)

// Repository persists user aggregates. Save is conditional on the
// aggregate's Version and returns common.ErrVersionConflict when the
// stored row moved on; callers retry with a fresh read.
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByReferralCode(ctx context.Context, code string) (*User, error)
	FindByWithdrawalID(ctx context.Context, withdrawalID string) (*User, error)
	// FindEligibleForAccrual selects active, verified, approved users
	// whose lastProfitDate is unset or before cutoff.
	FindEligibleForAccrual(ctx context.Context, cutoff time.Time) ([]*User, error)
	// CountReferred returns how many users signed up with the code and
	// how many of them have an active subscription.
	CountReferred(ctx context.Context, code string) (total int, active int, err error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

// saveAttempts bounds the read-mutate-save retry loop.
const saveAttempts = 3

// Mutate runs the read-mutate-save cycle for one user, retrying on
// version conflicts with a fresh read each attempt. The mutation
// function must be pure on the passed aggregate: it may be called up to
// saveAttempts times.
func Mutate(ctx context.Context, repo Repository, userID string, fn func(*User) error) (*User, error) {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		u, err := repo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, u); err != nil {
			if errors.Is(err, common.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return u, nil
	}
	return nil, lastErr
}
