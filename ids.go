package phxsock

import "github.com/segmentio/ksuid"

// newConnID generates a process-wide unique connection identifier. A
// k-sortable id is plenty for correlating connections in logs and
// registry keys.
func newConnID() string {
	return ksuid.New().String()
}
