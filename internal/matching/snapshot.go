package matching

import (
	"time"

	"docket/internal/entities"
)

// graphSnapshot records the state of an ingested person graph before matching
// mutates it, so a person whose matching errors can be restored to clean
// new-person semantics. Matching only ever assigns keys, rewrites inferred
// admission dates, and appends carried-over database entities to slice tails,
// so restoring is truncation plus field resets.
type graphSnapshot struct {
	bookingCount int
	bookings     []bookingSnapshot
}

type bookingSnapshot struct {
	admissionDate time.Time
	holdCount     int
	chargeCount   int
}

func takeSnapshot(person *entities.Person) graphSnapshot {
	snapshot := graphSnapshot{
		bookingCount: len(person.Bookings),
		bookings:     make([]bookingSnapshot, len(person.Bookings)),
	}
	for i, booking := range person.Bookings {
		snapshot.bookings[i] = bookingSnapshot{
			admissionDate: booking.AdmissionDate,
			holdCount:     len(booking.Holds),
			chargeCount:   len(booking.Charges),
		}
	}
	return snapshot
}

func (s graphSnapshot) restore(person *entities.Person) {
	person.ID = 0
	person.Bookings = person.Bookings[:s.bookingCount]
	for i, booking := range person.Bookings {
		booking.ID = 0
		booking.AdmissionDate = s.bookings[i].admissionDate
		booking.Holds = booking.Holds[:s.bookings[i].holdCount]
		booking.Charges = booking.Charges[:s.bookings[i].chargeCount]
		if booking.Arrest != nil {
			booking.Arrest.ID = 0
		}
		for _, hold := range booking.Holds {
			hold.ID = 0
		}
		for _, charge := range booking.Charges {
			charge.ID = 0
			if charge.Bond != nil {
				charge.Bond.ID = 0
			}
			if charge.Sentence != nil {
				charge.Sentence.ID = 0
			}
		}
	}
}
