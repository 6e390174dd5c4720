package songsched

import (
	"songsched/internal/retry"
	"songsched/predict"
	"songsched/storage"
	"songsched/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, songsched.ErrKeysExhausted) {
//		fmt.Println("all API keys spent, try again tomorrow")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var enrichErr *songsched.EnrichError
//	if errors.As(err, &enrichErr) {
//		fmt.Printf("enriching %s failed: %v\n", enrichErr.ID, enrichErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// EnrichError wraps errors during YouTube catalog enrichment.
	EnrichError = youtube.EnrichError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrKeysExhausted indicates every YouTube API key hit its daily quota.
	ErrKeysExhausted = youtube.ErrKeysExhausted
	// ErrVideoNotFound indicates the video ID is unknown to the API.
	ErrVideoNotFound = youtube.ErrVideoNotFound
	// ErrChannelNotFound indicates the channel ID is unknown to the API.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrPredictorNotReady indicates the view predictor has no trained state.
	ErrPredictorNotReady = predict.ErrNotReady

	// Storage errors
	// ErrNotFound indicates an entity was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = storage.ErrInvalidInput
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = storage.ErrStorageCorrupt
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = storage.ErrLockTimeout
)

// IsRetryable determines if an error should be retried.
// It returns false for context cancellation and deadline errors.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
