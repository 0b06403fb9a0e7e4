// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"context"
	"log/slog"
	"time"

	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/packver"
)

const (
	// ActionInstalled means the pack was not registered and has been installed.
	ActionInstalled Action = iota + 1
	// ActionUpgraded means an older registered version was replaced.
	ActionUpgraded
	// ActionSkippedSameVersion means the same version is already registered.
	ActionSkippedSameVersion
	// ActionSkippedNewer means a newer version is already registered.
	ActionSkippedNewer
	// ActionRemoved means the pack directory and its registration were deleted.
	ActionRemoved
)

type (
	// Action is what an operation did to one pack.
	Action int

	// Event describes one change to a world. Skips are not recorded.
	Event struct {
		Time     time.Time
		Action   Action
		Kind     manifest.PackKind
		PackID   string
		Name     string
		Version  packver.Version
		Previous *packver.Version
	}

	// Recorder receives an Event after every successful change.
	Recorder interface {
		Record(ctx context.Context, ev Event) error
	}
)

// String returns the action's report label.
func (a Action) String() string {
	switch a {
	case ActionInstalled:
		return "installed"
	case ActionUpgraded:
		return "upgraded"
	case ActionSkippedSameVersion:
		return "skipped"
	case ActionSkippedNewer:
		return "skipped (newer installed)"
	case ActionRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, bool) {
	for a := ActionInstalled; a <= ActionRemoved; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// Changed reports whether the action modified the world.
func (a Action) Changed() bool {
	return a == ActionInstalled || a == ActionUpgraded || a == ActionRemoved
}

// record forwards ev to rec. A failing recorder never fails the operation.
func record(ctx context.Context, rec Recorder, logger *slog.Logger, ev Event) {
	if rec == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if err := rec.Record(ctx, ev); err != nil {
		logger.Warn("failed to record pack event", "action", ev.Action.String(), "pack", ev.Name, "error", err)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
