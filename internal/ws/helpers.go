package ws

import "github.com/google/uuid"

// newConnID tags a socket for event correlation across connect, error and
// disconnect records.
func newConnID() string {
	return uuid.NewString()
}
