package injuries_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/restocktime/WizJock-sub001/internal/injuries"
	"github.com/restocktime/WizJock-sub001/internal/store"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// fakeStore keeps join rows as a set, like the primary key on the table
type fakeStore struct {
	reports  map[string]*models.Report
	injuries map[string]*models.InjuryUpdate
	links    map[[2]string]bool

	// linkErr fails any write that includes join rows, rolling back the whole write
	linkErr error
}

func newFakeStore(report *models.Report) *fakeStore {
	return &fakeStore{
		reports:  map[string]*models.Report{report.ID: report},
		injuries: map[string]*models.InjuryUpdate{},
		links:    map[[2]string]bool{},
	}
}

func (f *fakeStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, fmt.Errorf("report %s: %w", id, store.ErrNotFound)
	}
	return r, nil
}

func (f *fakeStore) GetInjury(ctx context.Context, id string) (*models.InjuryUpdate, error) {
	i, ok := f.injuries[id]
	if !ok {
		return nil, fmt.Errorf("injury %s: %w", id, store.ErrNotFound)
	}
	cp := *i
	for key := range f.links {
		if key[0] == id {
			cp.AffectedPickIDs = append(cp.AffectedPickIDs, key[1])
		}
	}
	return &cp, nil
}

func (f *fakeStore) CreateInjuryWithLinks(ctx context.Context, injury *models.InjuryUpdate, pickIDs []string) (int, error) {
	if len(pickIDs) > 0 && f.linkErr != nil {
		return 0, f.linkErr
	}
	stored := *injury
	f.injuries[injury.ID] = &stored
	return f.LinkInjury(ctx, injury.ID, pickIDs)
}

func (f *fakeStore) LinkInjury(ctx context.Context, injuryID string, pickIDs []string) (int, error) {
	if len(pickIDs) > 0 && f.linkErr != nil {
		return 0, f.linkErr
	}
	added := 0
	for _, pickID := range pickIDs {
		key := [2]string{injuryID, pickID}
		if !f.links[key] {
			f.links[key] = true
			added++
		}
	}
	return added, nil
}

type fakeInvalidator struct {
	sports []models.Sport
}

func (f *fakeInvalidator) InvalidateSport(ctx context.Context, sport models.Sport) {
	f.sports = append(f.sports, sport)
}

func report(status models.ReportStatus) *models.Report {
	return &models.Report{
		ID:     "r1",
		Sport:  models.SportNBA,
		Status: status,
		Picks: []models.Pick{
			{ID: "p1", Matchup: "Boston Celtics @ Los Angeles Lakers"},
			{ID: "p2", Matchup: "Miami Heat vs New York Knicks"},
			{ID: "p3", Matchup: "Denver Nuggets @ Los Angeles Lakers"},
		},
	}
}

func lakersInjury(status models.InjuryStatus) models.InjuryUpdate {
	return models.InjuryUpdate{
		PlayerName: "Anthony Davis",
		Team:       "Los Angeles Lakers",
		Status:     status,
		Impact:     models.ImpactCritical,
	}
}

func TestAddInjury_LinksMatchingPicks(t *testing.T) {
	st := newFakeStore(report(models.ReportPublished))
	cache := &fakeInvalidator{}
	svc := injuries.NewService(st, cache, nil)

	result, err := svc.AddInjury(context.Background(), "r1", lakersInjury(models.InjuryOut))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Added != 2 || len(result.Matched) != 2 {
		t.Fatalf("expected 2 Lakers picks linked, got %+v", result)
	}
	if !st.links[[2]string{result.Injury.ID, "p1"}] || !st.links[[2]string{result.Injury.ID, "p3"}] {
		t.Errorf("expected links to p1 and p3, got %v", st.links)
	}
	if result.Injury.ReportID != "r1" || result.Injury.ReportedAt.IsZero() {
		t.Errorf("expected injury owned by report with timestamp, got %+v", result.Injury)
	}
	if len(cache.sports) != 1 || cache.sports[0] != models.SportNBA {
		t.Errorf("expected NBA invalidation for a published report, got %v", cache.sports)
	}
}

func TestAddInjury_QuestionableNotLinked(t *testing.T) {
	st := newFakeStore(report(models.ReportPublished))
	cache := &fakeInvalidator{}
	svc := injuries.NewService(st, cache, nil)

	result, err := svc.AddInjury(context.Background(), "r1", lakersInjury(models.InjuryQuestionable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 0 || len(st.links) != 0 {
		t.Errorf("expected no links for questionable status, got %+v", result)
	}
	if len(st.injuries) != 1 {
		t.Error("expected the injury itself to be stored")
	}
	if len(cache.sports) != 0 {
		t.Error("expected no invalidation without new links")
	}
}

func TestAddInjury_DraftReportSkipsInvalidation(t *testing.T) {
	st := newFakeStore(report(models.ReportDraft))
	cache := &fakeInvalidator{}

	if _, err := injuries.NewService(st, cache, nil).AddInjury(context.Background(), "r1", lakersInjury(models.InjurySeasonEnding)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.sports) != 0 {
		t.Errorf("expected no invalidation for a draft, got %v", cache.sports)
	}
}

func TestAddInjury_Rejects(t *testing.T) {
	st := newFakeStore(report(models.ReportDraft))
	svc := injuries.NewService(st, nil, nil)

	bad := lakersInjury(models.InjuryStatus("day-to-day"))
	if _, err := svc.AddInjury(context.Background(), "r1", bad); err == nil {
		t.Error("expected invalid status to be rejected")
	}

	_, err := svc.AddInjury(context.Background(), "missing", lakersInjury(models.InjuryOut))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAddInjury_LinkFailureStoresNothing(t *testing.T) {
	st := newFakeStore(report(models.ReportPublished))
	st.linkErr = &store.PersistenceError{Op: "link injury to pick", Err: errors.New("db down")}
	cache := &fakeInvalidator{}
	svc := injuries.NewService(st, cache, nil)

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := svc.AddInjury(context.Background(), "r1", lakersInjury(models.InjuryOut))
		var perr *store.PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("attempt %d: expected PersistenceError, got %v", attempt, err)
		}
	}

	if len(st.injuries) != 0 || len(st.links) != 0 {
		t.Errorf("expected no rows after failed adds, got %d injuries and %d links", len(st.injuries), len(st.links))
	}
	if len(cache.sports) != 0 {
		t.Errorf("expected no invalidation, got %v", cache.sports)
	}

	st.linkErr = nil
	result, err := svc.AddInjury(context.Background(), "r1", lakersInjury(models.InjuryOut))
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if len(st.injuries) != 1 || result.Added != 2 {
		t.Errorf("expected one injury with 2 links after retry, got %d injuries, %+v", len(st.injuries), result)
	}
}

func TestAutoLink_Idempotent(t *testing.T) {
	st := newFakeStore(report(models.ReportPublished))
	cache := &fakeInvalidator{}
	svc := injuries.NewService(st, cache, nil)

	first, err := svc.AddInjury(context.Background(), "r1", lakersInjury(models.InjuryOut))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		again, err := svc.AutoLink(context.Background(), first.Injury.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Added != 0 {
			t.Errorf("pass %d: expected no new links, got %d", i, again.Added)
		}
		if len(again.Injury.AffectedPickIDs) != 2 {
			t.Errorf("pass %d: expected 2 affected picks, got %v", i, again.Injury.AffectedPickIDs)
		}
	}

	if len(st.links) != 2 {
		t.Errorf("expected exactly 2 join rows, got %d", len(st.links))
	}
	if len(cache.sports) != 1 {
		t.Errorf("expected invalidation only when links changed, got %d", len(cache.sports))
	}
}
