package files

import "errors"

var (
	// ErrFileNotFound covers both "does not exist" and "exists but
	// belongs to someone else". Keeping them indistinguishable stops
	// callers from probing other users' file ids.
	ErrFileNotFound = errors.New("file not found")
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)
