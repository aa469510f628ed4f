package store

import (
	"context"
	"fmt"

	"github.com/Reso1992/DmoTimer/internal/domain"
)

// Entry is the reconstructible configuration of one timer. Live countdown
// state (start, reminder, display message) is never stored.
type Entry struct {
	DurationHours float64
	ImageRef      string
	CustomMessage *string
}

// Snapshot maps each owner to their timers in insertion order.
type Snapshot map[domain.OwnerID][]Entry

// Repo persists registry snapshots. Save overwrites everything.
// Load on a store that was never saved returns an empty snapshot.
type Repo interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open returns the backend for driver. path is the JSON file or the SQLite database.
func Open(ctx context.Context, driver, path string) (Repo, error) {
	switch driver {
	case DriverJSON:
		return NewJSONFile(path), nil
	case DriverSQLite:
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
