package kvstore

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kvstore: key not found")

// ErrStopIteration is a sentinel a ScanPrefix callback can return to stop
// iteration early without signalling an error to the caller.
var ErrStopIteration = errors.New("kvstore: iteration stopped")
