package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when podcast generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate podcast from source content")

	// ErrInvalidResponse is returned when the pipeline response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from generation pipeline")

	// ErrContentBlocked is returned when the pipeline blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by generation pipeline safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during podcast generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
