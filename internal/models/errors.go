package models

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a remote resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrNoCategories is returned when the CMS exposes no usable categories.
	ErrNoCategories = errors.New("no categories available")

	// ErrLowQuality is returned when a generated draft fails the quality
	// check after the bounded regeneration retry.
	ErrLowQuality = errors.New("draft below quality threshold")

	// ErrImplausibleEnhancement is returned when an enhanced body shrinks
	// below the plausibility threshold and the update is blocked.
	ErrImplausibleEnhancement = errors.New("enhanced content implausibly short")

	// ErrUpstreamUnavailable is returned for transient upstream failures
	// (timeouts, 5xx, malformed payloads) that were resolved by fallback.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
