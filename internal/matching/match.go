package matching

import (
	"context"
	"fmt"
	"log/slog"

	"docket/internal/entities"
	"docket/internal/logging"
)

// CandidateSource supplies the stored people an ingested batch could match.
// Implementations scope results to the region and return complete person
// graphs (bookings, charges, bonds, sentences, holds, arrests).
type CandidateSource interface {
	// ReadPeopleByExternalIDs returns stored people whose external id matches
	// one of the supplied people.
	ReadPeopleByExternalIDs(ctx context.Context, region string, people []*entities.Person) ([]*entities.Person, error)
	// ReadPeopleWithOpenBookings returns stored people in the region that
	// still have an open booking; only open cases are eligible for matching
	// when the source provides no external id.
	ReadPeopleWithOpenBookings(ctx context.Context, region string, people []*entities.Person) ([]*entities.Person, error)
}

// Result is what one reconciliation pass produces besides the key assignments
// mutated onto the ingested graphs.
type Result struct {
	// ErrorCount is the number of ingested people whose matching failed.
	ErrorCount int
	// Failed lists those people. They are rolled back to new-person
	// semantics but must not be persisted: a person whose identity could
	// not be resolved would land as a duplicate row and poison every later
	// match against the same external id.
	Failed []*entities.Person
	// Orphaned holds stored bonds and sentences that lost their last
	// referencing charge and were marked removed. They are persisted
	// separately from the matched people.
	Orphaned []entities.Entity
}

// Engine matches ingested person graphs against stored candidates.
type Engine struct {
	logger   *slog.Logger
	source   CandidateSource
	matchers Matchers
}

// NewEngine constructs an Engine. Zero-valued matcher fields fall back to the
// field-equality defaults; a nil logger is replaced with a no-op logger.
func NewEngine(logger *slog.Logger, source CandidateSource, matchers Matchers) *Engine {
	return &Engine{
		logger:   logging.NewComponentLogger(logger, "matching"),
		source:   source,
		matchers: matchers.withDefaults(),
	}
}

// Match reconciles the ingested people for one region. People carrying an
// external id are matched against stored people with the same ids; people
// without one are matched against stored people with open bookings. Matching
// failures are counted per person and never abort the batch.
func (e *Engine) Match(ctx context.Context, region string, ingested []*entities.Person) (Result, error) {
	var withIDs, withoutIDs []*entities.Person
	for _, person := range ingested {
		if person.ExternalID != "" {
			withIDs = append(withIDs, person)
		} else {
			withoutIDs = append(withoutIDs, person)
		}
	}

	var result Result
	if len(withIDs) > 0 {
		candidates, err := e.source.ReadPeopleByExternalIDs(ctx, region, withIDs)
		if err != nil {
			return Result{}, fmt.Errorf("read people by external ids: %w", err)
		}
		e.matchPeople(candidates, withIDs, &result)
	}
	if len(withoutIDs) > 0 {
		candidates, err := e.source.ReadPeopleWithOpenBookings(ctx, region, withoutIDs)
		if err != nil {
			return Result{}, fmt.Errorf("read people with open bookings: %w", err)
		}
		e.matchPeople(candidates, withoutIDs, &result)
	}

	return result, nil
}

// matchPeople matches every ingested person against the candidate pool,
// accumulating error counts and orphaned entities onto result.
func (e *Engine) matchPeople(dbPeople, ingestedPeople []*entities.Person, result *Result) {
	claimed := make(map[int64]*entities.Person)
	for _, person := range ingestedPeople {
		snapshot := takeSnapshot(person)
		orphaned, err := e.matchPerson(person, dbPeople, claimed)
		if err != nil {
			e.logger.Error("failed to match ingested person",
				logging.String("external_id", person.ExternalID),
				logging.Error(err))
			// Roll the graph back to new-person semantics; a partially
			// identified graph must never reach persistence.
			snapshot.restore(person)
			result.ErrorCount++
			result.Failed = append(result.Failed, person)
			continue
		}
		result.Orphaned = append(result.Orphaned, orphaned...)
	}
}

// matchPerson finds the unique stored person for one ingested person and, on
// a match, copies the primary key and recurses into the booking tree. The
// returned orphans are only valid when err is nil.
func (e *Engine) matchPerson(ingested *entities.Person, dbPeople []*entities.Person, claimed map[int64]*entities.Person) ([]entities.Entity, error) {
	dbPerson, err := getOnlyMatch(ingested, dbPeople, e.matchers.Person)
	if err != nil {
		return nil, err
	}
	if dbPerson == nil {
		// No candidate: the person persists as new.
		return nil, nil
	}

	e.logger.Debug("matched person", logging.Int64("person_id", dbPerson.ID))
	if _, ok := claimed[dbPerson.ID]; ok {
		return nil, &MultipleIngestedMatchesError{EntityKind: dbPerson.EntityKind(), DatabaseID: dbPerson.ID}
	}
	ingested.ID = dbPerson.ID
	claimed[dbPerson.ID] = ingested

	var orphaned []entities.Entity
	if err := e.matchBookings(dbPerson, ingested, &orphaned); err != nil {
		return nil, err
	}
	return orphaned, nil
}

// matchBookings matches the bookings of one matched person pair. Stored
// bookings with no ingested counterpart are carried over onto the ingested
// person unmodified so they survive persistence.
func (e *Engine) matchBookings(dbPerson, ingestedPerson *entities.Person, orphaned *[]entities.Entity) error {
	claimed := make(map[int64]*entities.Booking)
	for _, ingestedBooking := range ingestedPerson.Bookings {
		dbBooking, err := getOnlyMatch(ingestedBooking, dbPerson.Bookings, e.matchers.Booking)
		if err != nil {
			return err
		}
		if dbBooking == nil {
			continue
		}

		e.logger.Debug("matched booking", logging.Int64("booking_id", dbBooking.ID))
		if _, ok := claimed[dbBooking.ID]; ok {
			return &MultipleIngestedMatchesError{EntityKind: dbBooking.EntityKind(), DatabaseID: dbBooking.ID}
		}
		claimed[dbBooking.ID] = ingestedBooking
		ingestedBooking.ID = dbBooking.ID

		// An inferred admission date is an estimate; a newer estimate is not
		// better than the stored one, so the stored date stays.
		if dbBooking.AdmissionDateInferred && ingestedBooking.AdmissionDateInferred {
			ingestedBooking.AdmissionDate = dbBooking.AdmissionDate
		}

		matchArrest(dbBooking, ingestedBooking)
		if err := e.matchHolds(dbBooking, ingestedBooking); err != nil {
			return err
		}
		e.matchCharges(dbBooking, ingestedBooking)
		e.matchBonds(dbBooking, ingestedBooking, orphaned)
		e.matchSentences(dbBooking, ingestedBooking, orphaned)
	}

	for _, dbBooking := range dbPerson.Bookings {
		if _, ok := claimed[dbBooking.ID]; !ok {
			ingestedPerson.Bookings = append(ingestedPerson.Bookings, dbBooking)
		}
	}
	return nil
}

// matchArrest copies the arrest key when both booking sides carry an arrest.
func matchArrest(dbBooking, ingestedBooking *entities.Booking) {
	if dbBooking.Arrest != nil && ingestedBooking.Arrest != nil {
		ingestedBooking.Arrest.ID = dbBooking.Arrest.ID
	}
}

// matchHolds matches holds one-to-one. Stored holds with no ingested
// counterpart are marked inferred-dropped and carried over onto the booking.
func (e *Engine) matchHolds(dbBooking, ingestedBooking *entities.Booking) error {
	claimed := make(map[int64]*entities.Hold)
	for _, ingestedHold := range ingestedBooking.Holds {
		dbHold, err := getOnlyMatch(ingestedHold, dbBooking.Holds, e.matchers.Hold)
		if err != nil {
			return err
		}
		if dbHold == nil {
			continue
		}

		e.logger.Debug("matched hold", logging.Int64("hold_id", dbHold.ID))
		if _, ok := claimed[dbHold.ID]; ok {
			return &MultipleIngestedMatchesError{EntityKind: dbHold.EntityKind(), DatabaseID: dbHold.ID}
		}
		ingestedHold.ID = dbHold.ID
		claimed[dbHold.ID] = ingestedHold
	}

	var dropped []*entities.Hold
	for _, dbHold := range dbBooking.Holds {
		if _, ok := claimed[dbHold.ID]; !ok {
			e.dropHold(dbHold)
			dropped = append(dropped, dbHold)
		}
	}
	ingestedBooking.Holds = append(ingestedBooking.Holds, dropped...)
	return nil
}

func (e *Engine) dropHold(hold *entities.Hold) {
	if hold.Status != entities.HoldInferredDropped {
		e.logger.Debug("dropping hold", logging.Int64("hold_id", hold.ID))
		hold.Status = entities.HoldInferredDropped
	}
}

// getOnlyMatch returns the single candidate satisfying the matcher, the zero
// value when none does, or a MultipleDatabaseMatchesError when more than one
// does.
func getOnlyMatch[E entities.Entity](ingested E, candidates []E, matcher func(db, ingested E) bool) (E, error) {
	var match E
	var matchedIDs []int64
	for _, candidate := range candidates {
		if matcher(candidate, ingested) {
			match = candidate
			matchedIDs = append(matchedIDs, candidate.PrimaryKey())
		}
	}
	if len(matchedIDs) > 1 {
		var zero E
		return zero, &MultipleDatabaseMatchesError{
			EntityKind: ingested.EntityKind(),
			ExternalID: externalID(ingested),
			MatchedIDs: matchedIDs,
		}
	}
	if len(matchedIDs) == 0 {
		var zero E
		return zero, nil
	}
	return match, nil
}

// getNextAvailableMatch returns the first unclaimed candidate satisfying the
// matcher, or the zero value. Unlike getOnlyMatch, multiple candidates are
// not an error; greedy assignment resolves them in order.
func getNextAvailableMatch[E entities.Entity](ingested E, candidates []E, claimed map[int64]struct{}, matcher func(db, ingested E) bool) E {
	for _, candidate := range candidates {
		if _, ok := claimed[candidate.PrimaryKey()]; ok {
			continue
		}
		if matcher(candidate, ingested) {
			return candidate
		}
	}
	var zero E
	return zero
}

func externalID(entity entities.Entity) string {
	switch v := entity.(type) {
	case *entities.Person:
		return v.ExternalID
	case *entities.Booking:
		return v.ExternalID
	case *entities.Charge:
		return v.ExternalID
	case *entities.Bond:
		return v.ExternalID
	case *entities.Sentence:
		return v.ExternalID
	case *entities.Hold:
		return v.ExternalID
	case *entities.Arrest:
		return v.ExternalID
	default:
		return ""
	}
}

