package interfaces

import "errors"

// ErrNotFound is returned when a load, location, or aggregation lookup finds
// no document. Callers test with errors.Is.
var ErrNotFound = errors.New("not found")
