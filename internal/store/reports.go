package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// CreateReport writes a fully assembled report and every child row in one
// transaction. Nothing is visible unless all of it commits.
func (p *Postgres) CreateReport(ctx context.Context, report *models.Report) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	var performance []byte
	if report.SystemPerformance != nil {
		performance, err = json.Marshal(report.SystemPerformance)
		if err != nil {
			return persistErr("marshal system performance", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, sport, status, generated_at, published_at, published_by, system_performance)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.Sport, report.Status, report.GeneratedAt,
		report.PublishedAt, report.PublishedBy, nullJSON(performance),
	)
	if err != nil {
		return persistErr("insert report", err)
	}

	for i := range report.Picks {
		if err := insertPick(ctx, tx, &report.Picks[i]); err != nil {
			return err
		}
	}

	for i := range report.Injuries {
		injury := &report.Injuries[i]
		if err := insertInjury(ctx, tx, injury); err != nil {
			return err
		}
		for _, pickID := range injury.AffectedPickIDs {
			if _, err := linkInjury(ctx, tx, injury.ID, pickID); err != nil {
				return err
			}
		}
	}

	for i := range report.Intelligence {
		if err := insertIntelligence(ctx, tx, &report.Intelligence[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit transaction", err)
	}

	return nil
}

func insertPick(ctx context.Context, tx *sql.Tx, pick *models.Pick) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO picks (
			id, report_id, game_id, matchup, game_time, bet_type, recommendation,
			confidence_score, risk_score, hierarchy, units, current_odds, opening_odds,
			expected_value, reasoning, detailed_analysis, outcome
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		pick.ID, pick.ReportID, pick.GameID, pick.Matchup, pick.GameTime, pick.BetType,
		pick.Recommendation, pick.ConfidenceScore, pick.RiskScore, pick.Hierarchy, pick.Units,
		pick.CurrentOdds, pick.OpeningOdds, pick.ExpectedValue, pick.Reasoning,
		pick.DetailedAnalysis, pick.Outcome,
	)
	if err != nil {
		return persistErr(fmt.Sprintf("insert pick %s", pick.GameID), err)
	}

	for _, prop := range pick.PlayerProps {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO player_props (
				id, pick_id, player_id, player_name, stat_type, line, over_under,
				odds, confidence, reasoning, outcome
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			prop.ID, prop.PickID, prop.PlayerID, prop.PlayerName, prop.StatType, prop.Line,
			prop.OverUnder, prop.Odds, prop.Confidence, prop.Reasoning, prop.Outcome,
		)
		if err != nil {
			return persistErr(fmt.Sprintf("insert player prop %s %s", prop.PlayerName, prop.StatType), err)
		}
	}

	for _, m := range pick.LineMovements {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO line_movements (
				id, pick_id, opening_line, current_line, movement_percentage,
				direction, sharp_money, notes, recorded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.ID, m.PickID, m.OpeningLine, m.CurrentLine, m.MovementPercentage,
			m.Direction, m.SharpMoney, m.Notes, m.Timestamp,
		)
		if err != nil {
			return persistErr(fmt.Sprintf("insert line movement for pick %s", pick.GameID), err)
		}
	}

	return nil
}

func insertIntelligence(ctx context.Context, tx *sql.Tx, u *models.IntelligenceUpdate) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO intelligence_updates (
			id, report_id, entity_id, entity_name, update_type, content, source,
			source_type, credibility_rating, reported_at, is_new
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.ReportID, u.EntityID, u.EntityName, u.UpdateType, u.Content, u.Source,
		u.SourceType, u.CredibilityRating, u.ReportedAt, u.IsNew,
	)
	if err != nil {
		return persistErr(fmt.Sprintf("insert intelligence %s", u.EntityName), err)
	}
	return nil
}

// GetReport loads a report with all of its children
func (p *Postgres) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if !validID(id) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}

	var (
		report      models.Report
		publishedAt sql.NullTime
		publishedBy sql.NullString
		performance []byte
	)

	err := p.db.QueryRowContext(ctx,
		`SELECT id, sport, status, generated_at, published_at, published_by, system_performance
		 FROM reports WHERE id = $1`, id,
	).Scan(&report.ID, &report.Sport, &report.Status, &report.GeneratedAt, &publishedAt, &publishedBy, &performance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	if publishedAt.Valid {
		t := publishedAt.Time
		report.PublishedAt = &t
	}
	if publishedBy.Valid {
		by := publishedBy.String
		report.PublishedBy = &by
	}
	if len(performance) > 0 {
		var sp models.SystemPerformance
		if err := json.Unmarshal(performance, &sp); err != nil {
			return nil, fmt.Errorf("parse system performance: %w", err)
		}
		report.SystemPerformance = &sp
	}

	report.Picks, err = p.queryPicks(ctx, `WHERE p.report_id = $1 ORDER BY `+hierarchyOrder+`, p.game_time`, id)
	if err != nil {
		return nil, err
	}
	if err := p.loadPickChildren(ctx, report.Picks); err != nil {
		return nil, err
	}

	report.Injuries, err = p.listInjuries(ctx, id)
	if err != nil {
		return nil, err
	}

	report.Intelligence, err = p.listIntelligence(ctx, id)
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// hierarchyOrder sorts picks lock first
const hierarchyOrder = `CASE p.hierarchy
	WHEN 'lock' THEN 0 WHEN 'featured' THEN 1 WHEN 'high' THEN 2
	WHEN 'medium' THEN 3 WHEN 'value' THEN 4 ELSE 5 END`

const pickColumns = `p.id, p.report_id, p.game_id, p.matchup, p.game_time, p.bet_type,
	p.recommendation, p.confidence_score, p.risk_score, p.hierarchy, p.units,
	p.current_odds, p.opening_odds, p.expected_value, p.reasoning,
	p.detailed_analysis, p.outcome`

func (p *Postgres) queryPicks(ctx context.Context, tail string, args ...interface{}) ([]models.Pick, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+pickColumns+` FROM picks p `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	picks := []models.Pick{}
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, pick)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate picks: %w", err)
	}

	return picks, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPick(row scanner, extra ...interface{}) (models.Pick, error) {
	var (
		pick          models.Pick
		riskScore     sql.NullInt64
		expectedValue sql.NullFloat64
		outcome       sql.NullString
	)

	dest := []interface{}{
		&pick.ID, &pick.ReportID, &pick.GameID, &pick.Matchup, &pick.GameTime, &pick.BetType,
		&pick.Recommendation, &pick.ConfidenceScore, &riskScore, &pick.Hierarchy, &pick.Units,
		&pick.CurrentOdds, &pick.OpeningOdds, &expectedValue, &pick.Reasoning,
		&pick.DetailedAnalysis, &outcome,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return pick, fmt.Errorf("scan pick: %w", err)
	}

	if riskScore.Valid {
		v := int(riskScore.Int64)
		pick.RiskScore = &v
	}
	if expectedValue.Valid {
		v := expectedValue.Float64
		pick.ExpectedValue = &v
	}
	pick.Outcome = outcomePtr(outcome)
	pick.PlayerProps = []models.PlayerProp{}
	pick.LineMovements = []models.LineMovement{}

	return pick, nil
}

// loadPickChildren attaches props and line movements to picks in place
func (p *Postgres) loadPickChildren(ctx context.Context, picks []models.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	index := make(map[string]int, len(picks))
	ids := make([]string, len(picks))
	for i, pick := range picks {
		index[pick.ID] = i
		ids[i] = pick.ID
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, pick_id, player_id, player_name, stat_type, line, over_under,
		        odds, confidence, reasoning, outcome
		 FROM player_props WHERE pick_id = ANY($1::uuid[])
		 ORDER BY player_name, stat_type`, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("query player props: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			prop    models.PlayerProp
			outcome sql.NullString
		)
		if err := rows.Scan(
			&prop.ID, &prop.PickID, &prop.PlayerID, &prop.PlayerName, &prop.StatType, &prop.Line,
			&prop.OverUnder, &prop.Odds, &prop.Confidence, &prop.Reasoning, &outcome,
		); err != nil {
			return fmt.Errorf("scan player prop: %w", err)
		}
		prop.Outcome = outcomePtr(outcome)
		i := index[prop.PickID]
		picks[i].PlayerProps = append(picks[i].PlayerProps, prop)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate player props: %w", err)
	}

	mrows, err := p.db.QueryContext(ctx,
		`SELECT id, pick_id, opening_line, current_line, movement_percentage,
		        direction, sharp_money, notes, recorded_at
		 FROM line_movements WHERE pick_id = ANY($1::uuid[])
		 ORDER BY recorded_at`, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("query line movements: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var m models.LineMovement
		if err := mrows.Scan(
			&m.ID, &m.PickID, &m.OpeningLine, &m.CurrentLine, &m.MovementPercentage,
			&m.Direction, &m.SharpMoney, &m.Notes, &m.Timestamp,
		); err != nil {
			return fmt.Errorf("scan line movement: %w", err)
		}
		i := index[m.PickID]
		picks[i].LineMovements = append(picks[i].LineMovements, m)
	}
	if err := mrows.Err(); err != nil {
		return fmt.Errorf("iterate line movements: %w", err)
	}

	return nil
}

func (p *Postgres) listIntelligence(ctx context.Context, reportID string) ([]models.IntelligenceUpdate, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, report_id, entity_id, entity_name, update_type, content, source,
		        source_type, credibility_rating, reported_at, is_new
		 FROM intelligence_updates WHERE report_id = $1
		 ORDER BY reported_at DESC`, reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("query intelligence: %w", err)
	}
	defer rows.Close()

	updates := []models.IntelligenceUpdate{}
	for rows.Next() {
		var (
			u      models.IntelligenceUpdate
			rating int
		)
		if err := rows.Scan(
			&u.ID, &u.ReportID, &u.EntityID, &u.EntityName, &u.UpdateType, &u.Content, &u.Source,
			&u.SourceType, &rating, &u.ReportedAt, &u.IsNew,
		); err != nil {
			return nil, fmt.Errorf("scan intelligence: %w", err)
		}
		u.CredibilityRating = &rating
		updates = append(updates, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intelligence: %w", err)
	}

	return updates, nil
}

func outcomePtr(ns sql.NullString) *models.Outcome {
	if !ns.Valid {
		return nil
	}
	o := models.Outcome(ns.String)
	return &o
}

// nullJSON keeps an absent document NULL rather than an empty byte string
func nullJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
