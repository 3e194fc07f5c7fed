package interfaces

import (
	"context"
	"time"

	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
)

// AlertRepository stores threshold alerts with rolling-window suppression.
type AlertRepository interface {
	// CreateIfAbsent inserts a new unresolved alert unless an unresolved
	// alert of the same type already exists within the trailing window.
	// Suppression and insert happen in one statement, so concurrent
	// evaluations of the same type cannot both insert. Returns whether a
	// row was created.
	CreateIfAbsent(ctx context.Context, alertType, severity, message string, window time.Duration) (bool, error)

	// ListRecent returns the most recent alerts, newest first.
	ListRecent(ctx context.Context, limit int) ([]hemmodels.AlertRecord, error)

	// Resolve marks an alert resolved. Unknown identifiers and repeated
	// calls are no-ops, not errors.
	Resolve(ctx context.Context, id int64) error
}
