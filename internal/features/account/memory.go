// Package account — memory.go is the in-process Repository used by
// tests. Behaves like the SQL implementation, including version checks.
package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"seashell.io/investment-backend/internal/common"
)

// MemoryRepository keeps aggregates in a mutex-guarded map. Values are
// deep-copied on the way in and out so callers never share state with
// the store.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

func cloneUser(u *User) *User {
	c := *u
	if u.Subscription != nil {
		sub := *u.Subscription
		if u.Subscription.StartDate != nil {
			sd := *u.Subscription.StartDate
			sub.StartDate = &sd
		}
		if u.Subscription.LastProfitDate != nil {
			lp := *u.Subscription.LastProfitDate
			sub.LastProfitDate = &lp
		}
		c.Subscription = &sub
	}
	c.WithdrawalHistory = make([]WithdrawalRequest, len(u.WithdrawalHistory))
	copy(c.WithdrawalHistory, u.WithdrawalHistory)
	for i := range c.WithdrawalHistory {
		if u.WithdrawalHistory[i].ProcessedAt != nil {
			pa := *u.WithdrawalHistory[i].ProcessedAt
			c.WithdrawalHistory[i].ProcessedAt = &pa
		}
	}
	c.ReferralEarnings = make([]CommissionRecord, len(u.ReferralEarnings))
	copy(c.ReferralEarnings, u.ReferralEarnings)
	return &c
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (r *MemoryRepository) FindByReferralCode(ctx context.Context, code string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ReferralCode == code {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (r *MemoryRepository) FindByWithdrawalID(ctx context.Context, withdrawalID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		for i := range u.WithdrawalHistory {
			if u.WithdrawalHistory[i].ID == withdrawalID {
				return cloneUser(u), nil
			}
		}
	}
	return nil, common.ErrWithdrawalNotFound
}

func (r *MemoryRepository) FindEligibleForAccrual(ctx context.Context, cutoff time.Time) ([]*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*User
	for _, u := range r.users {
		if eligibleForAccrual(u, cutoff) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func eligibleForAccrual(u *User, cutoff time.Time) bool {
	if u.Subscription == nil || !u.Subscription.IsActive {
		return false
	}
	if !u.IsVerified || u.VerificationStatus != StatusApproved {
		return false
	}
	lp := u.Subscription.LastProfitDate
	return lp == nil || lp.Before(cutoff)
}

func (r *MemoryRepository) CountReferred(ctx context.Context, code string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total, active := 0, 0
	for _, u := range r.users {
		if u.ReferredBy != code {
			continue
		}
		total++
		if u.Subscription != nil && u.Subscription.IsActive {
			active++
		}
	}
	return total, active, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return common.ErrVersionConflict
	}
	u.Version = 1
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *MemoryRepository) Save(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return common.ErrUserNotFound
	}
	if stored.Version != u.Version {
		return common.ErrVersionConflict
	}
	u.Version++
	u.UpdatedAt = time.Now()
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
