package store

import "errors"

// ErrKeyNotFound signals a missing KV entry.
var ErrKeyNotFound = errors.New("key not found")
