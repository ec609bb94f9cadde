// pkg/world/errors.go
package world

import "errors"

var (
	// ErrNodeNotFound is returned for a node index outside the world
	ErrNodeNotFound = errors.New("node not found")
	// ErrLinkNotFound is returned for a link index outside the world
	ErrLinkNotFound = errors.New("link not found")
	// ErrMalformed is returned when persisted state cannot be decoded
	ErrMalformed = errors.New("malformed world data")
)
