package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrMissingCredential signals a request without the API key it needs.
	ErrMissingCredential = errors.New("missing API key")
	// ErrUpstream signals a provider (embedding, generation, search) failure.
	ErrUpstream = errors.New("upstream provider error")
	// ErrStore signals a persistence failure.
	ErrStore = errors.New("store error")
	// ErrUnknownProvider signals an unrecognized generation provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)
