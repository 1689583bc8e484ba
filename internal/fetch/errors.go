package fetch

import "errors"

var (
	// ErrProviderTimeout marks an attempt that exceeded its time budget.
	ErrProviderTimeout = errors.New("provider timed out")

	// ErrProviderError marks a transport or payload failure.
	ErrProviderError = errors.New("provider request failed")

	// ErrNoUsableResults marks a provider that responded but produced
	// nothing worth keeping.
	ErrNoUsableResults = errors.New("no usable results")

	// ErrAllSourcesExhausted is the only error a cascade fetch surfaces.
	ErrAllSourcesExhausted = errors.New("all news sources exhausted")
)
