package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/restocktime/WizJock-sub001/pkg/models"
	"github.com/restocktime/WizJock-sub001/pkg/oddsmath"
)

// Assembly is a draft report ready to be written in one transaction
type Assembly struct {
	Report   *models.Report
	Warnings []string
}

// Assembler turns engine payloads into draft reports. It only derives
// values and assigns identity; it never touches storage.
type Assembler struct {
	newID func() string
	now   func() time.Time
}

// NewAssembler creates an assembler using random UUIDs and the wall clock
func NewAssembler() *Assembler {
	return &Assembler{newID: uuid.NewString, now: time.Now}
}

// Assemble builds the draft report for sport from output.
//
// Every pick is given an ID and, when the engine left it out, an expected
// value. Every injury is linked to every pick of the report. Intelligence
// gets its credibility default and freshness flag. Each line movement must
// name its pick through pick_ref; an unknown or missing ref rejects the
// whole payload.
func (a *Assembler) Assemble(sport models.Sport, output *models.EngineOutput) (*Assembly, error) {
	now := a.now().UTC()

	report := &models.Report{
		ID:                a.newID(),
		Sport:             sport,
		Status:            models.ReportDraft,
		GeneratedAt:       now,
		SystemPerformance: output.SystemPerformance,
		Picks:             make([]models.Pick, 0, len(output.Picks)),
		Injuries:          make([]models.InjuryUpdate, 0, len(output.Injuries)),
		Intelligence:      make([]models.IntelligenceUpdate, 0, len(output.Intelligence)),
	}

	byRef := make(map[string]int, len(output.Picks))
	pickIDs := make([]string, 0, len(output.Picks))

	for i, in := range output.Picks {
		pick := in
		pick.ID = a.newID()
		pick.ReportID = report.ID
		pick.Outcome = nil
		pick.LineMovements = []models.LineMovement{}

		if pick.ExpectedValue == nil {
			ev, err := oddsmath.ExpectedValue(pick.ConfidenceScore, pick.CurrentOdds)
			if err != nil {
				return nil, fmt.Errorf("pick %d (%s): expected value: %w", i, pick.GameID, err)
			}
			pick.ExpectedValue = &ev
		}

		props := make([]models.PlayerProp, len(in.PlayerProps))
		for j, prop := range in.PlayerProps {
			prop.ID = a.newID()
			prop.PickID = pick.ID
			prop.Outcome = nil
			props[j] = prop
		}
		pick.PlayerProps = props

		if pick.Ref != "" {
			if _, dup := byRef[pick.Ref]; dup {
				return nil, fmt.Errorf("pick %d (%s): duplicate ref %q", i, pick.GameID, pick.Ref)
			}
			byRef[pick.Ref] = i
		}

		report.Picks = append(report.Picks, pick)
		pickIDs = append(pickIDs, pick.ID)
	}

	for i, in := range output.LineMovements {
		idx, ok := byRef[in.PickRef]
		if in.PickRef == "" || !ok {
			return nil, fmt.Errorf("line movement %d: unknown pick_ref %q", i, in.PickRef)
		}

		pct, direction, err := oddsmath.LineMovement(in.OpeningLine, in.CurrentLine)
		if err != nil {
			return nil, fmt.Errorf("line movement %d: %w", i, err)
		}

		movement := in
		movement.ID = a.newID()
		movement.PickID = report.Picks[idx].ID
		movement.MovementPercentage = pct
		movement.Direction = direction
		if movement.Timestamp.IsZero() {
			movement.Timestamp = now
		}

		report.Picks[idx].LineMovements = append(report.Picks[idx].LineMovements, movement)
	}

	for _, in := range output.Injuries {
		injury := in
		injury.ID = a.newID()
		injury.ReportID = report.ID
		injury.AffectedPickIDs = append([]string(nil), pickIDs...)
		if injury.ReportedAt.IsZero() {
			injury.ReportedAt = now
		}
		report.Injuries = append(report.Injuries, injury)
	}

	for _, in := range output.Intelligence {
		update := in
		update.ID = a.newID()
		update.ReportID = report.ID
		update.ApplyDefaults(now)
		report.Intelligence = append(report.Intelligence, update)
	}

	assembly := &Assembly{Report: report}

	if locks := report.LockCount(); locks > 1 {
		assembly.Warnings = append(assembly.Warnings,
			fmt.Sprintf("report has %d lock picks; expected at most one", locks))
	}

	return assembly, nil
}
