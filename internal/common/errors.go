// Package common — errors.go defines the sentinel errors shared by all
// features. Callers match them with errors.Is to turn business failures
// into meaningful responses instead of opaque 500s.
package common

import "errors"

// Plan and amount validation
var (
	// ErrUnknownPlan — the requested plan name is not in the catalog
	ErrUnknownPlan = errors.New("unknown investment plan")
	// ErrInvalidReturnAmount — a plan amount string could not be parsed
	// into a positive value
	ErrInvalidReturnAmount = errors.New("invalid plan return amount")
)

// Account state
var (
	// ErrUserNotFound — no account with the given id/email/code
	ErrUserNotFound = errors.New("user not found")
	// ErrNotApproved — the account has not passed verification
	ErrNotApproved = errors.New("account is not approved")
	// ErrNotPending — the account is not awaiting verification
	ErrNotPending = errors.New("account is not pending verification")
)

// Withdrawals
var (
	// ErrBelowMinimum — requested amount is under the minimum
	ErrBelowMinimum = errors.New("amount is below the withdrawal minimum")
	// ErrInsufficientBalance — available balance does not cover the amount
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrWithdrawalNotFound — no withdrawal request with the given id
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")
	// ErrInvalidStatus — the target status is not a known disposition
	ErrInvalidStatus = errors.New("invalid withdrawal status")
	// ErrTerminalState — the request is already rejected or completed
	ErrTerminalState = errors.New("withdrawal request is in a terminal state")
	// ErrInvalidTransition — the status change is not allowed from the
	// current state
	ErrInvalidTransition = errors.New("invalid withdrawal status transition")
)

// Persistence
var (
	// ErrVersionConflict — the row changed between read and save;
	// retry with a fresh read
	ErrVersionConflict = errors.New("account version conflict")
)
