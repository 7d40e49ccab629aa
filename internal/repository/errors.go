package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrInvalidArgument indicates malformed input to a repository or service call.
var ErrInvalidArgument = errors.New("repository: invalid argument")
