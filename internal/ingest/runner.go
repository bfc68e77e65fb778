package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"

	"docket/internal/entities"
	"docket/internal/logging"
	"docket/internal/matching"
	"docket/internal/periods"
	"docket/internal/recidivism"
	"docket/internal/store"
)

// Runner executes reconciliation and period-load batches against one store.
type Runner struct {
	logger     *slog.Logger
	store      *store.Store
	engine     *matching.Engine
	identifier *recidivism.Identifier
}

// NewRunner constructs a Runner backed by the given store. The store doubles
// as the candidate source for matching.
func NewRunner(logger *slog.Logger, st *store.Store) *Runner {
	return &Runner{
		logger:     logging.NewComponentLogger(logger, "ingest"),
		store:      st,
		engine:     matching.NewEngine(logger, st, matching.Matchers{}),
		identifier: recidivism.NewIdentifier(logger),
	}
}

// Report summarizes one reconciliation batch.
type Report struct {
	BatchID  string
	People   int
	Matched  int
	Errors   int
	Orphaned int
}

// IngestFile decodes a scrape file, reconciles the person graphs against the
// store, and commits the result. People whose matching failed are excluded
// from the commit and only counted.
func (r *Runner) IngestFile(ctx context.Context, region, path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read record file: %w", err)
	}
	var records []personRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return Report{}, fmt.Errorf("decode record file %s: %w", path, err)
	}

	people := make([]*entities.Person, 0, len(records))
	for _, record := range records {
		people = append(people, record.toEntity(region))
	}

	batchID := uuid.NewString()
	r.logger.Info("starting reconciliation batch",
		logging.String(logging.FieldBatchID, batchID),
		logging.String(logging.FieldRegion, region),
		logging.Int("people", len(people)))

	return r.reconcile(ctx, region, batchID, people)
}

// Reconcile matches and commits already-decoded person graphs. IngestFile is
// the file-based entry point; this one exists for callers that build graphs
// in memory.
func (r *Runner) Reconcile(ctx context.Context, region string, people []*entities.Person) (Report, error) {
	return r.reconcile(ctx, region, uuid.NewString(), people)
}

func (r *Runner) reconcile(ctx context.Context, region, batchID string, people []*entities.Person) (Report, error) {
	result, err := r.engine.Match(ctx, region, people)
	if err != nil {
		return Report{}, fmt.Errorf("match batch %s: %w", batchID, err)
	}

	failed := make(map[*entities.Person]struct{}, len(result.Failed))
	for _, person := range result.Failed {
		failed[person] = struct{}{}
	}

	matched := 0
	committable := make([]*entities.Person, 0, len(people))
	for _, person := range people {
		if _, ok := failed[person]; ok {
			continue
		}
		committable = append(committable, person)
		if person.ID != 0 {
			matched++
		}
	}

	if err := r.store.CommitPeople(ctx, committable); err != nil {
		return Report{}, fmt.Errorf("commit batch %s: %w", batchID, err)
	}
	if err := r.store.CommitOrphans(ctx, result.Orphaned); err != nil {
		return Report{}, fmt.Errorf("commit orphans for batch %s: %w", batchID, err)
	}

	report := Report{
		BatchID:  batchID,
		People:   len(people),
		Matched:  matched,
		Errors:   result.ErrorCount,
		Orphaned: len(result.Orphaned),
	}
	r.logger.Info("reconciliation batch finished",
		logging.String(logging.FieldBatchID, report.BatchID),
		logging.Int("people", report.People),
		logging.Int("matched", report.Matched),
		logging.Int("errors", report.Errors),
		logging.Int("orphaned", report.Orphaned))
	return report, nil
}

// PeriodReport summarizes one period-load batch.
type PeriodReport struct {
	People  int
	Periods int
}

// LoadPeriodsFile decodes a period file and replaces each listed person's
// stored periods. Period feeds are whole-history snapshots per person.
func (r *Runner) LoadPeriodsFile(ctx context.Context, region, path string) (PeriodReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PeriodReport{}, fmt.Errorf("read period file: %w", err)
	}
	var entries []periodFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return PeriodReport{}, fmt.Errorf("decode period file %s: %w", path, err)
	}

	var report PeriodReport
	for _, entry := range entries {
		if entry.PersonExternalID == "" {
			return PeriodReport{}, fmt.Errorf("period entry without person_external_id in %s", path)
		}
		spans := make([]periods.Period, 0, len(entry.Periods))
		for _, record := range entry.Periods {
			spans = append(spans, record.toPeriod())
		}
		if err := r.store.ReplacePeriods(ctx, region, entry.PersonExternalID, spans); err != nil {
			return PeriodReport{}, fmt.Errorf("store periods for %s: %w", entry.PersonExternalID, err)
		}
		report.People++
		report.Periods += len(spans)
	}

	r.logger.Info("period load finished",
		logging.String(logging.FieldRegion, region),
		logging.Int("people", report.People),
		logging.Int("periods", report.Periods))
	return report, nil
}

// CohortStats aggregates the release events of one release-cohort year.
type CohortStats struct {
	Cohort      int
	Releases    int
	Recidivists int
	Rate        float64
}

// RecidivismReport classifies the stored periods of every person in the
// region and aggregates release events per cohort year. People whose periods
// fail validation are logged and skipped; bad source data for one person must
// not sink the report.
func (r *Runner) RecidivismReport(ctx context.Context, region string) ([]CohortStats, error) {
	people, err := r.store.PeopleWithPeriods(ctx, region)
	if err != nil {
		return nil, err
	}

	byCohort := make(map[int]*CohortStats)
	for _, personID := range people {
		spans, err := r.store.PeriodsForPerson(ctx, region, personID)
		if err != nil {
			return nil, err
		}
		events, err := r.identifier.FindReleaseEvents(spans)
		if err != nil {
			r.logger.Warn("skipping person in recidivism report",
				logging.String("person_external_id", personID),
				logging.Error(err))
			continue
		}
		for cohort, cohortEvents := range events {
			stats := byCohort[cohort]
			if stats == nil {
				stats = &CohortStats{Cohort: cohort}
				byCohort[cohort] = stats
			}
			for _, event := range cohortEvents {
				stats.Releases++
				if _, ok := event.(recidivism.RecidivismReleaseEvent); ok {
					stats.Recidivists++
				}
			}
		}
	}

	report := make([]CohortStats, 0, len(byCohort))
	for _, stats := range byCohort {
		if stats.Releases > 0 {
			stats.Rate = float64(stats.Recidivists) / float64(stats.Releases)
		}
		report = append(report, *stats)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Cohort < report[j].Cohort })
	return report, nil
}
