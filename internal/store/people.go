package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docket/internal/entities"
)

// ReadPeopleByExternalIDs returns stored people in the region whose external
// id matches one of the supplied people, with their full booking graphs.
func (s *Store) ReadPeopleByExternalIDs(ctx context.Context, region string, people []*entities.Person) ([]*entities.Person, error) {
	seen := make(map[string]struct{})
	var ids []any
	for _, person := range people {
		if person.ExternalID == "" {
			continue
		}
		if _, ok := seen[person.ExternalID]; ok {
			continue
		}
		seen[person.ExternalID] = struct{}{}
		ids = append(ids, person.ExternalID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(
		`SELECT id, external_id, full_name, birthdate, birthdate_inferred, gender, race
         FROM people WHERE region = ? AND external_id IN (%s)`, placeholders)
	args := append([]any{region}, ids...)

	return s.queryPeople(ctx, region, query, args...)
}

// ReadPeopleWithOpenBookings returns stored people in the region that still
// have a booking without a release date, with their full booking graphs.
func (s *Store) ReadPeopleWithOpenBookings(ctx context.Context, region string, _ []*entities.Person) ([]*entities.Person, error) {
	query := `SELECT DISTINCT p.id, p.external_id, p.full_name, p.birthdate, p.birthdate_inferred, p.gender, p.race
              FROM people p
              JOIN bookings b ON b.person_id = p.id
              WHERE p.region = ? AND b.release_date IS NULL`
	return s.queryPeople(ctx, region, query, region)
}

func (s *Store) queryPeople(ctx context.Context, region, query string, args ...any) ([]*entities.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []*entities.Person
	for rows.Next() {
		person, err := scanPerson(rows, region)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}

	for _, person := range people {
		if err := s.loadBookings(ctx, person); err != nil {
			return nil, err
		}
	}
	return people, nil
}

func scanPerson(rows *sql.Rows, region string) (*entities.Person, error) {
	var person entities.Person
	var externalID, birthdate sql.NullString
	var birthdateInferred int
	if err := rows.Scan(&person.ID, &externalID, &person.FullName, &birthdate,
		&birthdateInferred, &person.Gender, &person.Race); err != nil {
		return nil, fmt.Errorf("scan person: %w", err)
	}
	person.Region = region
	person.ExternalID = externalID.String
	person.BirthdateInferred = birthdateInferred != 0
	var err error
	if person.Birthdate, err = parseDate(birthdate); err != nil {
		return nil, err
	}
	return &person, nil
}

func (s *Store) loadBookings(ctx context.Context, person *entities.Person) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, admission_date, admission_date_inferred, release_date,
                release_date_inferred, projected_release_date, release_reason,
                custody_status, facility, classification
         FROM bookings WHERE person_id = ? ORDER BY id`, person.ID)
	if err != nil {
		return fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var booking entities.Booking
		var externalID, admission, release, projected sql.NullString
		var admissionInferred, releaseInferred int
		var custodyStatus string
		if err := rows.Scan(&booking.ID, &externalID, &admission, &admissionInferred,
			&release, &releaseInferred, &projected, &booking.ReleaseReason,
			&custodyStatus, &booking.Facility, &booking.Classification); err != nil {
			return fmt.Errorf("scan booking: %w", err)
		}
		booking.ExternalID = externalID.String
		booking.AdmissionDateInferred = admissionInferred != 0
		booking.ReleaseDateInferred = releaseInferred != 0
		booking.CustodyStatus = entities.CustodyStatus(custodyStatus)
		if booking.AdmissionDate, err = parseDate(admission); err != nil {
			return err
		}
		if booking.ReleaseDate, err = parseDate(release); err != nil {
			return err
		}
		if booking.ProjectedReleaseDate, err = parseDate(projected); err != nil {
			return err
		}
		person.Bookings = append(person.Bookings, &booking)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate bookings: %w", err)
	}

	for _, booking := range person.Bookings {
		if err := s.loadBookingChildren(ctx, booking); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadBookingChildren(ctx context.Context, booking *entities.Booking) error {
	if err := s.loadArrest(ctx, booking); err != nil {
		return err
	}
	if err := s.loadHolds(ctx, booking); err != nil {
		return err
	}

	bonds, err := s.loadBonds(ctx, booking.ID)
	if err != nil {
		return err
	}
	sentences, err := s.loadSentences(ctx, booking.ID)
	if err != nil {
		return err
	}
	return s.loadCharges(ctx, booking, bonds, sentences)
}

func (s *Store) loadArrest(ctx context.Context, booking *entities.Booking) error {
	var arrest entities.Arrest
	var externalID, date sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, external_id, date, location, agency, officer_name
         FROM arrests WHERE booking_id = ?`, booking.ID,
	).Scan(&arrest.ID, &externalID, &date, &arrest.Location, &arrest.Agency, &arrest.OfficerName)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query arrest: %w", err)
	}
	arrest.ExternalID = externalID.String
	if arrest.Date, err = parseDate(date); err != nil {
		return err
	}
	booking.Arrest = &arrest
	return nil
}

func (s *Store) loadHolds(ctx context.Context, booking *entities.Booking) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, jurisdiction_name, status FROM holds WHERE booking_id = ? ORDER BY id`,
		booking.ID)
	if err != nil {
		return fmt.Errorf("query holds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hold entities.Hold
		var externalID sql.NullString
		var status string
		if err := rows.Scan(&hold.ID, &externalID, &hold.JurisdictionName, &status); err != nil {
			return fmt.Errorf("scan hold: %w", err)
		}
		hold.ExternalID = externalID.String
		hold.Status = entities.HoldStatus(status)
		booking.Holds = append(booking.Holds, &hold)
	}
	return rows.Err()
}

func (s *Store) loadBonds(ctx context.Context, bookingID int64) (map[int64]*entities.Bond, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, amount_dollars, type, status, agent FROM bonds WHERE booking_id = ?`,
		bookingID)
	if err != nil {
		return nil, fmt.Errorf("query bonds: %w", err)
	}
	defer rows.Close()

	bonds := make(map[int64]*entities.Bond)
	for rows.Next() {
		var bond entities.Bond
		var externalID sql.NullString
		var status string
		if err := rows.Scan(&bond.ID, &externalID, &bond.AmountDollars, &bond.Type, &status, &bond.Agent); err != nil {
			return nil, fmt.Errorf("scan bond: %w", err)
		}
		bond.ExternalID = externalID.String
		bond.Status = entities.BondStatus(status)
		bonds[bond.ID] = &bond
	}
	return bonds, rows.Err()
}

func (s *Store) loadSentences(ctx context.Context, bookingID int64) (map[int64]*entities.Sentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, status, sentencing_region, min_length_days, max_length_days,
                is_life, is_probation, is_suspended, fine_dollars, parole_possible
         FROM sentences WHERE booking_id = ?`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("query sentences: %w", err)
	}
	defer rows.Close()

	sentences := make(map[int64]*entities.Sentence)
	for rows.Next() {
		var sentence entities.Sentence
		var externalID sql.NullString
		var status string
		var isLife, isProbation, isSuspended, parolePossible int
		if err := rows.Scan(&sentence.ID, &externalID, &status, &sentence.SentencingRegion,
			&sentence.MinLengthDays, &sentence.MaxLengthDays, &isLife, &isProbation,
			&isSuspended, &sentence.FineDollars, &parolePossible); err != nil {
			return nil, fmt.Errorf("scan sentence: %w", err)
		}
		sentence.ExternalID = externalID.String
		sentence.Status = entities.SentenceStatus(status)
		sentence.IsLife = isLife != 0
		sentence.IsProbation = isProbation != 0
		sentence.IsSuspended = isSuspended != 0
		sentence.ParolePossible = parolePossible != 0
		sentences[sentence.ID] = &sentence
	}
	return sentences, rows.Err()
}

func (s *Store) loadCharges(ctx context.Context, booking *entities.Booking, bonds map[int64]*entities.Bond, sentences map[int64]*entities.Sentence) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, offense_date, statute, name, degree, class, level,
                fee_dollars, charging_entity, status, court_type, case_number,
                next_court_date, judge_name, bond_id, sentence_id
         FROM charges WHERE booking_id = ? ORDER BY id`, booking.ID)
	if err != nil {
		return fmt.Errorf("query charges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var charge entities.Charge
		var externalID, offense, nextCourt sql.NullString
		var status string
		var bondID, sentenceID sql.NullInt64
		if err := rows.Scan(&charge.ID, &externalID, &offense, &charge.Statute, &charge.Name,
			&charge.Degree, &charge.Class, &charge.Level, &charge.FeeDollars,
			&charge.ChargingEntity, &status, &charge.CourtType, &charge.CaseNumber,
			&nextCourt, &charge.JudgeName, &bondID, &sentenceID); err != nil {
			return fmt.Errorf("scan charge: %w", err)
		}
		charge.ExternalID = externalID.String
		charge.Status = entities.ChargeStatus(status)
		if charge.OffenseDate, err = parseDate(offense); err != nil {
			return err
		}
		if charge.NextCourtDate, err = parseDate(nextCourt); err != nil {
			return err
		}
		// Shared bond/sentence instances stay shared in the hydrated graph;
		// relationship matching depends on pointer identity.
		if bondID.Valid {
			charge.Bond = bonds[bondID.Int64]
		}
		if sentenceID.Valid {
			charge.Sentence = sentences[sentenceID.Int64]
		}
		booking.Charges = append(booking.Charges, &charge)
	}
	return rows.Err()
}
