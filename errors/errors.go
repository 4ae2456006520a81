// Package errors provides error handling for provisiond.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping, and structured details through one import path.
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := store.Upsert(ctx, flag); err != nil {
//	    return errors.Wrap(err, "failed to upsert control flag")
//	}
//
//	// Check errors
//	if errors.Is(err, quota.ErrNoTarget) {
//	    // treat as zero deficit
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	GetAllDetails = crdb.GetAllDetails
	GetAllHints   = crdb.GetAllHints
)

// Sentinel marking and combination
var (
	Mark          = crdb.Mark
	CombineErrors = crdb.CombineErrors
)
