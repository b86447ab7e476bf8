package db

import "errors"

// ErrNotFound is returned when a conversation, character or user does not
// exist. Callers classify with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrPersistence wraps transaction commit failures. No partial writes are
// visible when it is returned.
var ErrPersistence = errors.New("persistence failure")
