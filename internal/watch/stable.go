package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Snapshot identifies one observed state of a file
type Snapshot struct {
	Size    int64
	ModTime time.Time
}

// Stat takes a snapshot of path
func Stat(path string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Equal reports whether two snapshots describe the same file state
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Size == other.Size && s.ModTime.Equal(other.ModTime)
}

// ErrUnstable is returned when a file keeps changing past the timeout
var ErrUnstable = errors.New("file did not settle")

// WaitStable polls path until its size and modification time are unchanged
// across one quiet interval, and returns the stable snapshot. A timeout of
// zero waits until ctx is done. A quiet interval of zero returns the first
// snapshot.
func WaitStable(ctx context.Context, path string, quiet, timeout time.Duration) (Snapshot, error) {
	prev, err := Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	if quiet <= 0 {
		return prev, nil
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	ticker := time.NewTicker(quiet)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-deadline:
			return Snapshot{}, fmt.Errorf("%s: %w after %v", path, ErrUnstable, timeout)
		case <-ticker.C:
			cur, err := Stat(path)
			if err != nil {
				return Snapshot{}, err
			}
			if cur.Equal(prev) {
				return cur, nil
			}
			prev = cur
		}
	}
}
