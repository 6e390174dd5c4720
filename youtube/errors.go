package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the enricher.
var (
	// ErrKeysExhausted means every configured API key has hit its daily quota.
	ErrKeysExhausted = errors.New("all api keys exhausted")
	// ErrVideoNotFound means the API returned no item for the video ID.
	ErrVideoNotFound = errors.New("video not found")
	// ErrChannelNotFound means the API returned no item for the channel ID.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrNetworkTimeout indicates a request was cut off by its context.
	ErrNetworkTimeout = errors.New("network timeout")
)

// EnrichError wraps an API failure with the entity that triggered it.
type EnrichError struct {
	Entity string // "video" or "channel"
	ID     string
	Err    error
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("youtube: enrich %s %q: %v", e.Entity, e.ID, e.Err)
}

func (e *EnrichError) Unwrap() error {
	return e.Err
}
