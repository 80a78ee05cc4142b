package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// PublishResult describes a committed publish
type PublishResult struct {
	ReportID    string
	Sport       models.Sport
	PublishedAt time.Time
	PublishedBy string

	// Demoted lists reports of the same sport moved to unpublished
	Demoted []string
}

// PublishReport makes the draft reportID the single published report of
// its sport.
// Demotion of the previous report and promotion of this one commit
// together; concurrent publishes for one sport are serialized on an
// advisory lock keyed by sport.
func (p *Postgres) PublishReport(ctx context.Context, reportID, publishedBy string, at time.Time) (*PublishResult, error) {
	if !validID(reportID) {
		return nil, &StateTransitionError{ReportID: reportID, Target: models.ReportPublished}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	sport, status, err := lockReport(ctx, tx, reportID)
	if err != nil {
		return nil, err
	}
	if sport == "" {
		return nil, &StateTransitionError{ReportID: reportID, Target: models.ReportPublished}
	}
	// Only drafts publish; unpublished is terminal
	if status != models.ReportDraft {
		return nil, &StateTransitionError{ReportID: reportID, Current: status, Target: models.ReportPublished}
	}

	rows, err := tx.QueryContext(ctx,
		`UPDATE reports SET status = $1
		 WHERE sport = $2 AND status = $3 AND id <> $4
		 RETURNING id`,
		models.ReportUnpublished, sport, models.ReportPublished, reportID,
	)
	if err != nil {
		return nil, persistErr("demote published reports", err)
	}

	var demoted []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, persistErr("scan demoted report", err)
		}
		demoted = append(demoted, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, persistErr("demote published reports", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE reports SET status = $1, published_at = $2, published_by = $3
		 WHERE id = $4`,
		models.ReportPublished, at, sql.NullString{String: publishedBy, Valid: publishedBy != ""}, reportID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &StateTransitionError{ReportID: reportID, Current: status, Target: models.ReportPublished}
		}
		return nil, persistErr("publish report", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistErr("commit transaction", err)
	}

	return &PublishResult{
		ReportID:    reportID,
		Sport:       sport,
		PublishedAt: at,
		PublishedBy: publishedBy,
		Demoted:     demoted,
	}, nil
}

// UnpublishReport moves a published report to unpublished and returns its sport
func (p *Postgres) UnpublishReport(ctx context.Context, reportID string) (models.Sport, error) {
	if !validID(reportID) {
		return "", &StateTransitionError{ReportID: reportID, Target: models.ReportUnpublished}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	sport, status, err := lockReport(ctx, tx, reportID)
	if err != nil {
		return "", err
	}
	if sport == "" {
		return "", &StateTransitionError{ReportID: reportID, Target: models.ReportUnpublished}
	}
	if status != models.ReportPublished {
		return "", &StateTransitionError{ReportID: reportID, Current: status, Target: models.ReportUnpublished}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE reports SET status = $1 WHERE id = $2`,
		models.ReportUnpublished, reportID,
	)
	if err != nil {
		return "", persistErr("unpublish report", err)
	}

	if err := tx.Commit(); err != nil {
		return "", persistErr("commit transaction", err)
	}

	return sport, nil
}

// lockReport takes the per-sport advisory lock and then the report's row
// lock. An empty sport means the report does not exist.
func lockReport(ctx context.Context, tx *sql.Tx, reportID string) (models.Sport, models.ReportStatus, error) {
	var sport models.Sport
	err := tx.QueryRowContext(ctx, `SELECT sport FROM reports WHERE id = $1`, reportID).Scan(&sport)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", persistErr("read report", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "reports.publish."+string(sport)); err != nil {
		return "", "", persistErr("lock sport", err)
	}

	var status models.ReportStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM reports WHERE id = $1 FOR UPDATE`, reportID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", persistErr("lock report", err)
	}

	return sport, status, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ListPublishedPicks reads picks of currently published reports, lock first
func (p *Postgres) ListPublishedPicks(ctx context.Context, filters models.PickFilters) ([]models.PublishedPick, error) {
	query := `
		SELECT ` + pickColumns + `, r.sport, r.published_at
		FROM picks p
		JOIN reports r ON r.id = p.report_id
		WHERE r.status = 'published'
	`
	args := []interface{}{}
	argPos := 1

	if filters.Sport != "" {
		query += fmt.Sprintf(" AND r.sport = $%d", argPos)
		args = append(args, filters.Sport)
		argPos++
	}

	if filters.BetType != "" {
		query += fmt.Sprintf(" AND p.bet_type = $%d", argPos)
		args = append(args, filters.BetType)
		argPos++
	}

	if filters.Hierarchy != "" {
		query += fmt.Sprintf(" AND p.hierarchy = $%d", argPos)
		args = append(args, filters.Hierarchy)
	}

	query += " ORDER BY r.sport, " + hierarchyOrder + ", p.game_time"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query published picks: %w", err)
	}
	defer rows.Close()

	published := []models.PublishedPick{}
	for rows.Next() {
		var (
			sport       models.Sport
			publishedAt sql.NullTime
		)
		pick, err := scanPick(rows, &sport, &publishedAt)
		if err != nil {
			return nil, err
		}
		published = append(published, models.PublishedPick{
			Pick:        pick,
			Sport:       sport,
			PublishedAt: publishedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published picks: %w", err)
	}

	picks := make([]models.Pick, len(published))
	for i := range published {
		picks[i] = published[i].Pick
	}
	if err := p.loadPickChildren(ctx, picks); err != nil {
		return nil, err
	}
	for i := range published {
		published[i].Pick = picks[i]
	}

	return published, nil
}
