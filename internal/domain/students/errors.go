package students

import "errors"

// ErrNotFound is returned by stores when a lookup matches no row.
var ErrNotFound = errors.New("record not found")
