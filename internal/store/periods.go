package store

import (
	"context"
	"database/sql"
	"fmt"

	"docket/internal/periods"
)

// ReplacePeriods swaps in the full set of incarceration periods for one person
// in one region. Period feeds arrive as whole-history snapshots, so a replace
// is simpler and safer than reconciling row by row.
func (s *Store) ReplacePeriods(ctx context.Context, region, personExternalID string, spans []periods.Period) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin period replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM incarceration_periods WHERE region = ? AND person_external_id = ?`,
		region, personExternalID); err != nil {
		return fmt.Errorf("clear periods: %w", err)
	}

	for i := range spans {
		span := &spans[i]
		res, err := tx.ExecContext(ctx,
			`INSERT INTO incarceration_periods (region, person_external_id, external_id,
                    state_code, status, admission_date, admission_reason, release_date,
                    release_reason, release_reason_raw_text, facility, housing_unit,
                    security_level, security_level_raw_text, projected_release_reason,
                    projected_release_reason_raw_text)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			region, personExternalID, nullableString(span.ExternalID), span.StateCode,
			string(span.Status), nullableDate(span.AdmissionDate), string(span.AdmissionReason),
			nullableDate(span.ReleaseDate), string(span.ReleaseReason), span.ReleaseReasonRawText,
			span.Facility, span.HousingUnit, span.SecurityLevel, span.SecurityLevelRawText,
			span.ProjectedReleaseReason, span.ProjectedReleaseReasonRawText)
		if err != nil {
			return fmt.Errorf("insert period: %w", err)
		}
		if span.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("period id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit periods: %w", err)
	}
	return nil
}

// PeriodsForPerson returns the stored incarceration periods for one person in
// insertion order.
func (s *Store) PeriodsForPerson(ctx context.Context, region, personExternalID string) ([]periods.Period, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, state_code, status, admission_date, admission_reason,
                release_date, release_reason, release_reason_raw_text, facility,
                housing_unit, security_level, security_level_raw_text,
                projected_release_reason, projected_release_reason_raw_text
         FROM incarceration_periods
         WHERE region = ? AND person_external_id = ? ORDER BY id`,
		region, personExternalID)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var spans []periods.Period
	for rows.Next() {
		var span periods.Period
		var externalID, admission, release sql.NullString
		var status, admissionReason, releaseReason string
		if err := rows.Scan(&span.ID, &externalID, &span.StateCode, &status, &admission,
			&admissionReason, &release, &releaseReason, &span.ReleaseReasonRawText,
			&span.Facility, &span.HousingUnit, &span.SecurityLevel, &span.SecurityLevelRawText,
			&span.ProjectedReleaseReason, &span.ProjectedReleaseReasonRawText); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		span.ExternalID = externalID.String
		span.Status = periods.Status(status)
		span.AdmissionReason = periods.AdmissionReason(admissionReason)
		span.ReleaseReason = periods.ReleaseReason(releaseReason)
		if span.AdmissionDate, err = parseDate(admission); err != nil {
			return nil, err
		}
		if span.ReleaseDate, err = parseDate(release); err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return spans, nil
}

// PeopleWithPeriods lists the distinct person external ids that have stored
// periods in a region.
func (s *Store) PeopleWithPeriods(ctx context.Context, region string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT person_external_id FROM incarceration_periods
         WHERE region = ? ORDER BY person_external_id`, region)
	if err != nil {
		return nil, fmt.Errorf("query period people: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan period person: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period people: %w", err)
	}
	return ids, nil
}
