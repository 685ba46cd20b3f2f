package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/crm"
)

// CreateActivity records an activity with one target row per contact and
// returns its id.
func (s *SQLite) CreateActivity(ctx context.Context, a *crm.Activity) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("creating activity: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO activity (activity_type, source_contact_id, subject, details, activity_date_time)
		 VALUES (?, ?, ?, ?, ?)`,
		a.TypeName, a.SourceContactID, a.Subject, a.Details, a.DateTime.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("creating activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("creating activity: %w", err)
	}

	for _, target := range a.TargetContactIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO activity_target (activity_id, contact_id) VALUES (?, ?)`, id, target); err != nil {
			return 0, fmt.Errorf("creating activity target %d: %w", target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("creating activity: %w", err)
	}

	s.logger.Debug("activity created",
		zap.Int64("activity_id", id),
		zap.String("type", a.TypeName),
		zap.Int64s("targets", a.TargetContactIDs))
	return id, nil
}

// Activities returns the activities targeting contactID, oldest first.
// TargetContactIDs of each result holds contactID only.
func (s *SQLite) Activities(ctx context.Context, contactID int64) ([]crm.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.activity_type, a.source_contact_id, a.subject, a.details, a.activity_date_time
		 FROM activity a JOIN activity_target t ON t.activity_id = a.id
		 WHERE t.contact_id = ? ORDER BY a.id`, contactID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var out []crm.Activity
	for rows.Next() {
		var (
			a    crm.Activity
			when string
		)
		if err := rows.Scan(&a.ID, &a.TypeName, &a.SourceContactID, &a.Subject, &a.Details, &when); err != nil {
			return nil, fmt.Errorf("reading activity: %w", err)
		}
		if a.DateTime, err = time.Parse(time.RFC3339, when); err != nil {
			return nil, fmt.Errorf("activity %d date: %w", a.ID, err)
		}
		a.TargetContactIDs = []int64{contactID}
		out = append(out, a)
	}
	return out, rows.Err()
}
