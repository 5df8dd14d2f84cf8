package dedup

import "errors"

var (
	// ErrEmptySignature indicates an item produced no shingles, usually
	// because its text is empty or all stop words.
	ErrEmptySignature = errors.New("dedup: empty shingle set")

	// ErrInvalidThreshold indicates a similarity threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("dedup: threshold must be in (0, 1]")
)
