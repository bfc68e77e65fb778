package matching

import (
	"time"

	"golang.org/x/text/cases"

	"docket/internal/entities"
)

// Matchers holds the equality predicates the engine uses to decide whether an
// ingested entity and a stored entity describe the same real-world record.
// Each predicate receives the stored entity first. Regions with unusual data
// can override individual predicates; zero fields fall back to the defaults.
type Matchers struct {
	Person   func(db, ingested *entities.Person) bool
	Booking  func(db, ingested *entities.Booking) bool
	Hold     func(db, ingested *entities.Hold) bool
	Charge   func(db, ingested *entities.Charge) bool
	Bond     func(db, ingested *entities.Bond) bool
	Sentence func(db, ingested *entities.Sentence) bool
}

// DefaultMatchers returns the standard field-equality predicates.
func DefaultMatchers() Matchers {
	return Matchers{
		Person:   IsPersonMatch,
		Booking:  IsBookingMatch,
		Hold:     IsHoldMatch,
		Charge:   IsChargeMatch,
		Bond:     IsBondMatch,
		Sentence: IsSentenceMatch,
	}
}

func (m Matchers) withDefaults() Matchers {
	defaults := DefaultMatchers()
	if m.Person == nil {
		m.Person = defaults.Person
	}
	if m.Booking == nil {
		m.Booking = defaults.Booking
	}
	if m.Hold == nil {
		m.Hold = defaults.Hold
	}
	if m.Charge == nil {
		m.Charge = defaults.Charge
	}
	if m.Bond == nil {
		m.Bond = defaults.Bond
	}
	if m.Sentence == nil {
		m.Sentence = defaults.Sentence
	}
	return m
}

// IsPersonMatch compares on external id when both sides carry one, otherwise
// on case-folded full name plus birthdate.
func IsPersonMatch(db, ingested *entities.Person) bool {
	if db.ExternalID != "" && ingested.ExternalID != "" {
		return db.ExternalID == ingested.ExternalID
	}
	if !foldEqual(db.FullName, ingested.FullName) {
		return false
	}
	return db.Birthdate.Equal(ingested.Birthdate)
}

// IsBookingMatch compares on external id when both sides carry one. Without
// external ids, bookings with authoritative admission dates match on the
// date; when either date was inferred from scrape time, the dates cannot be
// trusted and two bookings match only if both are still open.
func IsBookingMatch(db, ingested *entities.Booking) bool {
	if db.ExternalID != "" && ingested.ExternalID != "" {
		return db.ExternalID == ingested.ExternalID
	}
	if db.AdmissionDateInferred || ingested.AdmissionDateInferred {
		return db.ReleaseDate.IsZero() && ingested.ReleaseDate.IsZero()
	}
	return db.AdmissionDate.Equal(ingested.AdmissionDate)
}

// IsHoldMatch compares holds on the jurisdiction that placed them.
func IsHoldMatch(db, ingested *entities.Hold) bool {
	return foldEqual(db.JurisdictionName, ingested.JurisdictionName)
}

// IsChargeMatch compares the charge fields alone, without considering bond or
// sentence children. Status, next court date, and judge are excluded: they
// move between scrapes without the charge becoming a different record.
func IsChargeMatch(db, ingested *entities.Charge) bool {
	return sameDate(db.OffenseDate, ingested.OffenseDate) &&
		db.Statute == ingested.Statute &&
		foldEqual(db.Name, ingested.Name) &&
		db.Degree == ingested.Degree &&
		db.Class == ingested.Class &&
		db.Level == ingested.Level &&
		db.FeeDollars == ingested.FeeDollars &&
		foldEqual(db.ChargingEntity, ingested.ChargingEntity) &&
		db.CourtType == ingested.CourtType &&
		db.CaseNumber == ingested.CaseNumber
}

// IsBondMatch compares bond fields, excluding status.
func IsBondMatch(db, ingested *entities.Bond) bool {
	return db.AmountDollars == ingested.AmountDollars &&
		db.Type == ingested.Type &&
		foldEqual(db.Agent, ingested.Agent)
}

// IsSentenceMatch compares sentence fields, excluding status.
func IsSentenceMatch(db, ingested *entities.Sentence) bool {
	return foldEqual(db.SentencingRegion, ingested.SentencingRegion) &&
		db.MinLengthDays == ingested.MinLengthDays &&
		db.MaxLengthDays == ingested.MaxLengthDays &&
		db.IsLife == ingested.IsLife &&
		db.IsProbation == ingested.IsProbation &&
		db.IsSuspended == ingested.IsSuspended &&
		db.FineDollars == ingested.FineDollars &&
		db.ParolePossible == ingested.ParolePossible
}

// foldEqual compares two source strings under Unicode case folding, so
// jurisdictions that report names in different casings still match.
func foldEqual(a, b string) bool {
	if a == b {
		return true
	}
	folder := cases.Fold()
	return folder.String(a) == folder.String(b)
}

func sameDate(a, b time.Time) bool {
	return a.Equal(b)
}
