package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertInjury(ctx context.Context, db execer, injury *models.InjuryUpdate) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO injury_updates (
			id, report_id, player_id, player_name, team, status, injury_type,
			impact, details, reported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		injury.ID, injury.ReportID, injury.PlayerID, injury.PlayerName, injury.Team,
		injury.Status, injury.InjuryType, injury.Impact, injury.Details, injury.ReportedAt,
	)
	if err != nil {
		return persistErr(fmt.Sprintf("insert injury %s", injury.PlayerName), err)
	}
	return nil
}

// linkInjury inserts one join row. Repeating a link is a no-op; the
// return value reports whether a row was added.
func linkInjury(ctx context.Context, db execer, injuryID, pickID string) (bool, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO injury_affected_picks (injury_id, pick_id)
		 VALUES ($1, $2)
		 ON CONFLICT (injury_id, pick_id) DO NOTHING`,
		injuryID, pickID,
	)
	if err != nil {
		return false, persistErr("link injury to pick", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, persistErr("link injury to pick", err)
	}
	return n > 0, nil
}

// CreateInjuryWithLinks stores a manually entered injury on an existing
// report together with its links to pickIDs. Nothing is written unless
// every row is. Returns the number of links added.
func (p *Postgres) CreateInjuryWithLinks(ctx context.Context, injury *models.InjuryUpdate, pickIDs []string) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := insertInjury(ctx, tx, injury); err != nil {
		return 0, err
	}

	added := 0
	for _, pickID := range pickIDs {
		ok, err := linkInjury(ctx, tx, injury.ID, pickID)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, persistErr("commit transaction", err)
	}

	return added, nil
}

// LinkInjury links an injury to each of pickIDs in one transaction and
// returns how many links were new
func (p *Postgres) LinkInjury(ctx context.Context, injuryID string, pickIDs []string) (int, error) {
	if len(pickIDs) == 0 {
		return 0, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	added := 0
	for _, pickID := range pickIDs {
		ok, err := linkInjury(ctx, tx, injuryID, pickID)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, persistErr("commit transaction", err)
	}

	return added, nil
}

const injuryColumns = `i.id, i.report_id, i.player_id, i.player_name, i.team, i.status,
	i.injury_type, i.impact, i.details, i.reported_at,
	COALESCE(array_agg(l.pick_id::text) FILTER (WHERE l.pick_id IS NOT NULL), '{}')`

// GetInjury loads one injury with its current links
func (p *Postgres) GetInjury(ctx context.Context, id string) (*models.InjuryUpdate, error) {
	if !validID(id) {
		return nil, fmt.Errorf("injury %s: %w", id, ErrNotFound)
	}

	row := p.db.QueryRowContext(ctx,
		`SELECT `+injuryColumns+`
		 FROM injury_updates i
		 LEFT JOIN injury_affected_picks l ON l.injury_id = i.id
		 WHERE i.id = $1
		 GROUP BY i.id`, id,
	)

	injury, err := scanInjury(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("injury %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &injury, nil
}

func (p *Postgres) listInjuries(ctx context.Context, reportID string) ([]models.InjuryUpdate, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+injuryColumns+`
		 FROM injury_updates i
		 LEFT JOIN injury_affected_picks l ON l.injury_id = i.id
		 WHERE i.report_id = $1
		 GROUP BY i.id
		 ORDER BY i.reported_at DESC`, reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("query injuries: %w", err)
	}
	defer rows.Close()

	injuries := []models.InjuryUpdate{}
	for rows.Next() {
		injury, err := scanInjury(rows)
		if err != nil {
			return nil, err
		}
		injuries = append(injuries, injury)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate injuries: %w", err)
	}

	return injuries, nil
}

func scanInjury(row scanner) (models.InjuryUpdate, error) {
	var injury models.InjuryUpdate
	var affected pq.StringArray

	err := row.Scan(
		&injury.ID, &injury.ReportID, &injury.PlayerID, &injury.PlayerName, &injury.Team,
		&injury.Status, &injury.InjuryType, &injury.Impact, &injury.Details, &injury.ReportedAt,
		&affected,
	)
	if err == sql.ErrNoRows {
		return injury, err
	}
	if err != nil {
		return injury, fmt.Errorf("scan injury: %w", err)
	}

	injury.AffectedPickIDs = []string(affected)
	return injury, nil
}

// ListLinkedInjuries returns the injuries of the given impact linked to
// any of pickIDs, one entry per (pick, injury) link
func (p *Postgres) ListLinkedInjuries(ctx context.Context, pickIDs []string, impact models.InjuryImpact) ([]models.LinkedInjury, error) {
	if len(pickIDs) == 0 {
		return nil, nil
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT l.pick_id, i.player_name, i.status, i.impact
		 FROM injury_affected_picks l
		 JOIN injury_updates i ON i.id = l.injury_id
		 WHERE l.pick_id = ANY($1::uuid[]) AND i.impact = $2
		 ORDER BY i.reported_at DESC`,
		pq.Array(pickIDs), impact,
	)
	if err != nil {
		return nil, fmt.Errorf("query linked injuries: %w", err)
	}
	defer rows.Close()

	var linked []models.LinkedInjury
	for rows.Next() {
		var li models.LinkedInjury
		if err := rows.Scan(&li.PickID, &li.PlayerName, &li.Status, &li.Impact); err != nil {
			return nil, fmt.Errorf("scan linked injury: %w", err)
		}
		linked = append(linked, li)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linked injuries: %w", err)
	}

	return linked, nil
}
