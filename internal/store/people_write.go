package store

import (
	"context"
	"database/sql"
	"fmt"

	"docket/internal/entities"
)

// CommitPeople persists reconciled person graphs inside one transaction.
// Entities with a primary key are updated in place; the rest are inserted
// and receive their generated key on the in-memory graph.
func (s *Store) CommitPeople(ctx context.Context, people []*entities.Person) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	for _, person := range people {
		if err := writePerson(ctx, tx, person); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit people: %w", err)
	}
	return nil
}

// CommitOrphans updates entities detached from the graph during matching.
// Only the status survives; the rows keep their original parent references.
func (s *Store) CommitOrphans(ctx context.Context, orphans []entities.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin orphan commit: %w", err)
	}
	defer tx.Rollback()

	for _, orphan := range orphans {
		if orphan.PrimaryKey() == 0 {
			continue
		}
		var execErr error
		switch v := orphan.(type) {
		case *entities.Bond:
			_, execErr = tx.ExecContext(ctx, `UPDATE bonds SET status = ? WHERE id = ?`, string(v.Status), v.ID)
		case *entities.Sentence:
			_, execErr = tx.ExecContext(ctx, `UPDATE sentences SET status = ? WHERE id = ?`, string(v.Status), v.ID)
		default:
			execErr = fmt.Errorf("unsupported orphan kind %q", orphan.EntityKind())
		}
		if execErr != nil {
			return fmt.Errorf("commit orphan: %w", execErr)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit orphans: %w", err)
	}
	return nil
}

func writePerson(ctx context.Context, tx *sql.Tx, person *entities.Person) error {
	if person.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO people (region, external_id, full_name, birthdate, birthdate_inferred, gender, race)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			person.Region, nullableString(person.ExternalID), person.FullName,
			nullableDate(person.Birthdate), boolToInt(person.BirthdateInferred),
			person.Gender, person.Race)
		if err != nil {
			return fmt.Errorf("insert person: %w", err)
		}
		if person.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("person id: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`UPDATE people SET region = ?, external_id = ?, full_name = ?, birthdate = ?,
                    birthdate_inferred = ?, gender = ?, race = ? WHERE id = ?`,
			person.Region, nullableString(person.ExternalID), person.FullName,
			nullableDate(person.Birthdate), boolToInt(person.BirthdateInferred),
			person.Gender, person.Race, person.ID)
		if err != nil {
			return fmt.Errorf("update person: %w", err)
		}
	}

	for _, booking := range person.Bookings {
		if err := writeBooking(ctx, tx, person.ID, booking); err != nil {
			return err
		}
	}
	return nil
}

func writeBooking(ctx context.Context, tx *sql.Tx, personID int64, booking *entities.Booking) error {
	if booking.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (person_id, external_id, admission_date, admission_date_inferred,
                    release_date, release_date_inferred, projected_release_date, release_reason,
                    custody_status, facility, classification)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			personID, nullableString(booking.ExternalID),
			nullableDate(booking.AdmissionDate), boolToInt(booking.AdmissionDateInferred),
			nullableDate(booking.ReleaseDate), boolToInt(booking.ReleaseDateInferred),
			nullableDate(booking.ProjectedReleaseDate), booking.ReleaseReason,
			string(booking.CustodyStatus), booking.Facility, booking.Classification)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if booking.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("booking id: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET person_id = ?, external_id = ?, admission_date = ?,
                    admission_date_inferred = ?, release_date = ?, release_date_inferred = ?,
                    projected_release_date = ?, release_reason = ?, custody_status = ?,
                    facility = ?, classification = ? WHERE id = ?`,
			personID, nullableString(booking.ExternalID),
			nullableDate(booking.AdmissionDate), boolToInt(booking.AdmissionDateInferred),
			nullableDate(booking.ReleaseDate), boolToInt(booking.ReleaseDateInferred),
			nullableDate(booking.ProjectedReleaseDate), booking.ReleaseReason,
			string(booking.CustodyStatus), booking.Facility, booking.Classification, booking.ID)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
	}

	if booking.Arrest != nil {
		if err := writeArrest(ctx, tx, booking.ID, booking.Arrest); err != nil {
			return err
		}
	}
	for _, hold := range booking.Holds {
		if err := writeHold(ctx, tx, booking.ID, hold); err != nil {
			return err
		}
	}

	// Bonds and sentences go first so charges can reference their keys.
	// A bond or sentence shared by several charges is written once.
	for _, bond := range uniqueBonds(booking.Charges) {
		if err := writeBond(ctx, tx, booking.ID, bond); err != nil {
			return err
		}
	}
	for _, sentence := range uniqueSentences(booking.Charges) {
		if err := writeSentence(ctx, tx, booking.ID, sentence); err != nil {
			return err
		}
	}
	for _, charge := range booking.Charges {
		if err := writeCharge(ctx, tx, booking.ID, charge); err != nil {
			return err
		}
	}
	return nil
}

func uniqueBonds(charges []*entities.Charge) []*entities.Bond {
	seen := make(map[*entities.Bond]struct{})
	var bonds []*entities.Bond
	for _, charge := range charges {
		if charge.Bond == nil {
			continue
		}
		if _, ok := seen[charge.Bond]; ok {
			continue
		}
		seen[charge.Bond] = struct{}{}
		bonds = append(bonds, charge.Bond)
	}
	return bonds
}

func uniqueSentences(charges []*entities.Charge) []*entities.Sentence {
	seen := make(map[*entities.Sentence]struct{})
	var sentences []*entities.Sentence
	for _, charge := range charges {
		if charge.Sentence == nil {
			continue
		}
		if _, ok := seen[charge.Sentence]; ok {
			continue
		}
		seen[charge.Sentence] = struct{}{}
		sentences = append(sentences, charge.Sentence)
	}
	return sentences
}

func writeArrest(ctx context.Context, tx *sql.Tx, bookingID int64, arrest *entities.Arrest) error {
	if arrest.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO arrests (booking_id, external_id, date, location, agency, officer_name)
             VALUES (?, ?, ?, ?, ?, ?)`,
			bookingID, nullableString(arrest.ExternalID), nullableDate(arrest.Date),
			arrest.Location, arrest.Agency, arrest.OfficerName)
		if err != nil {
			return fmt.Errorf("insert arrest: %w", err)
		}
		if arrest.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("arrest id: %w", err)
		}
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE arrests SET booking_id = ?, external_id = ?, date = ?, location = ?,
                agency = ?, officer_name = ? WHERE id = ?`,
		bookingID, nullableString(arrest.ExternalID), nullableDate(arrest.Date),
		arrest.Location, arrest.Agency, arrest.OfficerName, arrest.ID)
	if err != nil {
		return fmt.Errorf("update arrest: %w", err)
	}
	return nil
}

func writeHold(ctx context.Context, tx *sql.Tx, bookingID int64, hold *entities.Hold) error {
	if hold.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO holds (booking_id, external_id, jurisdiction_name, status) VALUES (?, ?, ?, ?)`,
			bookingID, nullableString(hold.ExternalID), hold.JurisdictionName, string(hold.Status))
		if err != nil {
			return fmt.Errorf("insert hold: %w", err)
		}
		if hold.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("hold id: %w", err)
		}
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE holds SET booking_id = ?, external_id = ?, jurisdiction_name = ?, status = ? WHERE id = ?`,
		bookingID, nullableString(hold.ExternalID), hold.JurisdictionName, string(hold.Status), hold.ID)
	if err != nil {
		return fmt.Errorf("update hold: %w", err)
	}
	return nil
}

func writeBond(ctx context.Context, tx *sql.Tx, bookingID int64, bond *entities.Bond) error {
	if bond.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bonds (booking_id, external_id, amount_dollars, type, status, agent)
             VALUES (?, ?, ?, ?, ?, ?)`,
			bookingID, nullableString(bond.ExternalID), bond.AmountDollars, bond.Type,
			string(bond.Status), bond.Agent)
		if err != nil {
			return fmt.Errorf("insert bond: %w", err)
		}
		if bond.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("bond id: %w", err)
		}
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE bonds SET booking_id = ?, external_id = ?, amount_dollars = ?, type = ?,
                status = ?, agent = ? WHERE id = ?`,
		bookingID, nullableString(bond.ExternalID), bond.AmountDollars, bond.Type,
		string(bond.Status), bond.Agent, bond.ID)
	if err != nil {
		return fmt.Errorf("update bond: %w", err)
	}
	return nil
}

func writeSentence(ctx context.Context, tx *sql.Tx, bookingID int64, sentence *entities.Sentence) error {
	if sentence.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sentences (booking_id, external_id, status, sentencing_region,
                    min_length_days, max_length_days, is_life, is_probation, is_suspended,
                    fine_dollars, parole_possible)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bookingID, nullableString(sentence.ExternalID), string(sentence.Status),
			sentence.SentencingRegion, sentence.MinLengthDays, sentence.MaxLengthDays,
			boolToInt(sentence.IsLife), boolToInt(sentence.IsProbation),
			boolToInt(sentence.IsSuspended), sentence.FineDollars, boolToInt(sentence.ParolePossible))
		if err != nil {
			return fmt.Errorf("insert sentence: %w", err)
		}
		if sentence.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sentence id: %w", err)
		}
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE sentences SET booking_id = ?, external_id = ?, status = ?, sentencing_region = ?,
                min_length_days = ?, max_length_days = ?, is_life = ?, is_probation = ?,
                is_suspended = ?, fine_dollars = ?, parole_possible = ? WHERE id = ?`,
		bookingID, nullableString(sentence.ExternalID), string(sentence.Status),
		sentence.SentencingRegion, sentence.MinLengthDays, sentence.MaxLengthDays,
		boolToInt(sentence.IsLife), boolToInt(sentence.IsProbation),
		boolToInt(sentence.IsSuspended), sentence.FineDollars, boolToInt(sentence.ParolePossible),
		sentence.ID)
	if err != nil {
		return fmt.Errorf("update sentence: %w", err)
	}
	return nil
}

func writeCharge(ctx context.Context, tx *sql.Tx, bookingID int64, charge *entities.Charge) error {
	var bondID, sentenceID any
	if charge.Bond != nil {
		bondID = charge.Bond.ID
	}
	if charge.Sentence != nil {
		sentenceID = charge.Sentence.ID
	}

	if charge.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO charges (booking_id, external_id, offense_date, statute, name, degree,
                    class, level, fee_dollars, charging_entity, status, court_type, case_number,
                    next_court_date, judge_name, bond_id, sentence_id)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bookingID, nullableString(charge.ExternalID), nullableDate(charge.OffenseDate),
			charge.Statute, charge.Name, charge.Degree, charge.Class, charge.Level,
			charge.FeeDollars, charge.ChargingEntity, string(charge.Status), charge.CourtType,
			charge.CaseNumber, nullableDate(charge.NextCourtDate), charge.JudgeName,
			bondID, sentenceID)
		if err != nil {
			return fmt.Errorf("insert charge: %w", err)
		}
		if charge.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("charge id: %w", err)
		}
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE charges SET booking_id = ?, external_id = ?, offense_date = ?, statute = ?,
                name = ?, degree = ?, class = ?, level = ?, fee_dollars = ?, charging_entity = ?,
                status = ?, court_type = ?, case_number = ?, next_court_date = ?, judge_name = ?,
                bond_id = ?, sentence_id = ? WHERE id = ?`,
		bookingID, nullableString(charge.ExternalID), nullableDate(charge.OffenseDate),
		charge.Statute, charge.Name, charge.Degree, charge.Class, charge.Level,
		charge.FeeDollars, charge.ChargingEntity, string(charge.Status), charge.CourtType,
		charge.CaseNumber, nullableDate(charge.NextCourtDate), charge.JudgeName,
		bondID, sentenceID, charge.ID)
	if err != nil {
		return fmt.Errorf("update charge: %w", err)
	}
	return nil
}
