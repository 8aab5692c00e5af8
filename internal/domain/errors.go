package domain

import "errors"

var (
	// ErrAuthDenied signals a 401/403 from an upstream source.
	ErrAuthDenied = errors.New("authentication denied")
	// ErrEmptyResult signals a fetch that produced no usable content.
	ErrEmptyResult = errors.New("empty result")
	// ErrUnsupportedKind signals a source kind with no registered fetcher.
	ErrUnsupportedKind = errors.New("unsupported source kind")
	// ErrStoreUnavailable signals a knowledge store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrProviderError signals an embedding or completion provider failure.
	ErrProviderError = errors.New("provider error")
)
