package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown backend, driver or provider name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates a hosted API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline A.

	// ErrStreamUnavailable indicates the camera stream could not be opened.
	// The detection loop refuses to start without it.
	ErrStreamUnavailable = errors.New("camera stream unavailable")

	// ErrDetectorUnavailable indicates the object detector is unreachable
	// or has no model loaded.
	ErrDetectorUnavailable = errors.New("detector unavailable")

	// ErrActuatorUnavailable indicates the serial actuator could not be opened
	// or has been closed.
	ErrActuatorUnavailable = errors.New("actuator unavailable")

	// Pipeline B.

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not open.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrNoRelevantInformation indicates retrieval found nothing to ground an answer on.
	ErrNoRelevantInformation = errors.New("no relevant information")
)
