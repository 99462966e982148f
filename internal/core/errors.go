package core

import "errors"

var (
	// ErrQuestionTooShort rejects a question before any provider is called.
	ErrQuestionTooShort = errors.New("question is too short")

	// ErrEmptyEmbedding marks an embedding response with no vector in it. A
	// silently empty vector would corrupt every similarity search downstream,
	// so it must be distinguishable from transport failures.
	ErrEmptyEmbedding = errors.New("embedding provider returned an empty vector")

	// ErrEmptyResponse marks a generation response with no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)
