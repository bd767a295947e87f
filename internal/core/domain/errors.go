package domain

import "errors"

var (
	// ErrInvalidParameters rejects a request before any network call.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrNotFound means the city name did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrCellFetchFailure is absorbed by the sweep; the cell is skipped.
	ErrCellFetchFailure = errors.New("cell fetch failed")
	// ErrAllSamplesFailed means no lattice cell produced a sample.
	ErrAllSamplesFailed = errors.New("all samples failed")
	// ErrSettlementLookupFailure is absorbed; the settlement is left out.
	ErrSettlementLookupFailure = errors.New("settlement lookup failed")
	// ErrInvalidEconomicsInput means the payback formula is undefined.
	ErrInvalidEconomicsInput = errors.New("invalid economics input")
)
