// Package errorspkg provides errors shared by all layers of the application.
package errorspkg

import "errors"

// ErrInternal is returned when the cause of a failure must not reach the client.
var ErrInternal = errors.New("internal")
