package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"docket/internal/config"
	"docket/internal/entities"
	"docket/internal/periods"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ingest.Region = "us_xx_test"

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return store
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCommitAndReadBackPersonGraph(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bond := &entities.Bond{AmountDollars: 5000, Type: "cash", Status: entities.BondPending}
	sentence := &entities.Sentence{Status: entities.SentenceServing, MinLengthDays: 30, MaxLengthDays: 90}
	person := &entities.Person{
		ExternalID: "P-100",
		Region:     "us_xx_test",
		FullName:   "JANE DOE",
		Birthdate:  date(1980, time.March, 2),
		Bookings: []*entities.Booking{{
			ExternalID:    "B-1",
			AdmissionDate: date(2024, time.January, 15),
			CustodyStatus: entities.CustodyHeld,
			Facility:      "COUNTY JAIL",
			Arrest:        &entities.Arrest{Agency: "PD", Date: date(2024, time.January, 14)},
			Holds:         []*entities.Hold{{JurisdictionName: "FEDERAL", Status: entities.HoldActive}},
			Charges: []*entities.Charge{
				{Statute: "123.4", Name: "THEFT", Bond: bond, Sentence: sentence},
				{Statute: "567.8", Name: "TRESPASS", Bond: bond},
			},
		}},
	}

	if err := store.CommitPeople(ctx, []*entities.Person{person}); err != nil {
		t.Fatalf("CommitPeople() error: %v", err)
	}
	if person.ID == 0 || person.Bookings[0].ID == 0 {
		t.Fatal("expected primary keys assigned after commit")
	}

	read, err := store.ReadPeopleByExternalIDs(ctx, "us_xx_test", []*entities.Person{{ExternalID: "P-100"}})
	if err != nil {
		t.Fatalf("ReadPeopleByExternalIDs() error: %v", err)
	}
	if len(read) != 1 {
		t.Fatalf("expected 1 person, got %d", len(read))
	}

	got := read[0]
	if got.ID != person.ID || got.FullName != "JANE DOE" {
		t.Errorf("person mismatch: %+v", got)
	}
	if !got.Birthdate.Equal(date(1980, time.March, 2)) {
		t.Errorf("birthdate mismatch: %v", got.Birthdate)
	}
	if len(got.Bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(got.Bookings))
	}

	booking := got.Bookings[0]
	if booking.Arrest == nil || booking.Arrest.Agency != "PD" {
		t.Errorf("arrest not hydrated: %+v", booking.Arrest)
	}
	if len(booking.Holds) != 1 || booking.Holds[0].JurisdictionName != "FEDERAL" {
		t.Errorf("holds not hydrated: %+v", booking.Holds)
	}
	if len(booking.Charges) != 2 {
		t.Fatalf("expected 2 charges, got %d", len(booking.Charges))
	}
	if booking.Charges[0].Bond == nil || booking.Charges[1].Bond == nil {
		t.Fatal("bonds not hydrated")
	}
	if booking.Charges[0].Bond != booking.Charges[1].Bond {
		t.Error("shared bond hydrated as two separate instances")
	}
	if booking.Charges[0].Sentence == nil || booking.Charges[0].Sentence.MaxLengthDays != 90 {
		t.Errorf("sentence not hydrated: %+v", booking.Charges[0].Sentence)
	}
	if booking.Charges[1].Sentence != nil {
		t.Error("unexpected sentence on second charge")
	}
}

func TestCommitPeopleUpdatesExistingRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	person := &entities.Person{
		ExternalID: "P-200",
		Region:     "us_xx_test",
		FullName:   "JOHN ROE",
		Bookings: []*entities.Booking{{
			AdmissionDate: date(2024, time.February, 1),
			CustodyStatus: entities.CustodyHeld,
		}},
	}
	if err := store.CommitPeople(ctx, []*entities.Person{person}); err != nil {
		t.Fatalf("CommitPeople() error: %v", err)
	}

	person.Bookings[0].ReleaseDate = date(2024, time.March, 1)
	person.Bookings[0].CustodyStatus = entities.CustodyReleased
	if err := store.CommitPeople(ctx, []*entities.Person{person}); err != nil {
		t.Fatalf("CommitPeople() update error: %v", err)
	}

	summary, err := store.Summarize(ctx, "us_xx_test")
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if summary.People != 1 {
		t.Errorf("expected 1 person, got %d", summary.People)
	}
	if summary.OpenBookings != 0 {
		t.Errorf("expected 0 open bookings after release, got %d", summary.OpenBookings)
	}

	read, err := store.ReadPeopleByExternalIDs(ctx, "us_xx_test", []*entities.Person{{ExternalID: "P-200"}})
	if err != nil {
		t.Fatalf("ReadPeopleByExternalIDs() error: %v", err)
	}
	if got := read[0].Bookings[0].CustodyStatus; got != entities.CustodyReleased {
		t.Errorf("custody status = %q, want released", got)
	}
}

func TestReadPeopleWithOpenBookings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	open := &entities.Person{
		Region:   "us_xx_test",
		FullName: "STILL INSIDE",
		Bookings: []*entities.Booking{{
			AdmissionDate: date(2024, time.April, 1),
			CustodyStatus: entities.CustodyHeld,
		}},
	}
	released := &entities.Person{
		Region:   "us_xx_test",
		FullName: "WALKED OUT",
		Bookings: []*entities.Booking{{
			AdmissionDate: date(2024, time.April, 1),
			ReleaseDate:   date(2024, time.May, 1),
			CustodyStatus: entities.CustodyReleased,
		}},
	}
	if err := store.CommitPeople(ctx, []*entities.Person{open, released}); err != nil {
		t.Fatalf("CommitPeople() error: %v", err)
	}

	read, err := store.ReadPeopleWithOpenBookings(ctx, "us_xx_test", nil)
	if err != nil {
		t.Fatalf("ReadPeopleWithOpenBookings() error: %v", err)
	}
	if len(read) != 1 {
		t.Fatalf("expected 1 person with open booking, got %d", len(read))
	}
	if read[0].FullName != "STILL INSIDE" {
		t.Errorf("wrong person returned: %q", read[0].FullName)
	}
}

func TestCommitOrphansUpdatesStatusOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bond := &entities.Bond{AmountDollars: 1000, Type: "cash", Status: entities.BondPending}
	person := &entities.Person{
		ExternalID: "P-300",
		Region:     "us_xx_test",
		Bookings: []*entities.Booking{{
			AdmissionDate: date(2024, time.June, 1),
			Charges:       []*entities.Charge{{Name: "DUI", Bond: bond}},
		}},
	}
	if err := store.CommitPeople(ctx, []*entities.Person{person}); err != nil {
		t.Fatalf("CommitPeople() error: %v", err)
	}

	bond.Status = entities.BondRemovedWithoutInfo
	if err := store.CommitOrphans(ctx, []entities.Entity{bond}); err != nil {
		t.Fatalf("CommitOrphans() error: %v", err)
	}

	read, err := store.ReadPeopleByExternalIDs(ctx, "us_xx_test", []*entities.Person{{ExternalID: "P-300"}})
	if err != nil {
		t.Fatalf("ReadPeopleByExternalIDs() error: %v", err)
	}
	got := read[0].Bookings[0].Charges[0].Bond
	if got == nil || got.Status != entities.BondRemovedWithoutInfo {
		t.Errorf("bond status = %+v, want removed_without_info", got)
	}
}

func TestReplaceAndReadPeriods(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []periods.Period{{
		StateCode:       "US_XX",
		Status:          periods.StatusNotInCustody,
		AdmissionDate:   date(2008, time.November, 20),
		AdmissionReason: periods.AdmissionNewAdmission,
		ReleaseDate:     date(2010, time.December, 4),
		ReleaseReason:   periods.ReleaseSentenceServed,
		Facility:        "PRISON XX",
	}}
	if err := store.ReplacePeriods(ctx, "us_xx_test", "P-400", first); err != nil {
		t.Fatalf("ReplacePeriods() error: %v", err)
	}

	second := append(first, periods.Period{
		StateCode:       "US_XX",
		Status:          periods.StatusInCustody,
		AdmissionDate:   date(2011, time.April, 5),
		AdmissionReason: periods.AdmissionNewAdmission,
	})
	if err := store.ReplacePeriods(ctx, "us_xx_test", "P-400", second); err != nil {
		t.Fatalf("ReplacePeriods() second error: %v", err)
	}

	spans, err := store.PeriodsForPerson(ctx, "us_xx_test", "P-400")
	if err != nil {
		t.Fatalf("PeriodsForPerson() error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 periods after replace, got %d", len(spans))
	}
	if !spans[0].ReleaseDate.Equal(date(2010, time.December, 4)) {
		t.Errorf("release date mismatch: %v", spans[0].ReleaseDate)
	}
	if !spans[1].ReleaseDate.IsZero() {
		t.Errorf("open period should have zero release date, got %v", spans[1].ReleaseDate)
	}

	people, err := store.PeopleWithPeriods(ctx, "us_xx_test")
	if err != nil {
		t.Fatalf("PeopleWithPeriods() error: %v", err)
	}
	if len(people) != 1 || people[0] != "P-400" {
		t.Errorf("PeopleWithPeriods() = %v, want [P-400]", people)
	}
}
