package health

import "context"

// DBPinger checks persistent store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Counter reports the size of one in-memory index.
type Counter interface {
	Len() int
}
