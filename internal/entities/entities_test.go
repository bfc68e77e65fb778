package entities

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestEntityKinds(t *testing.T) {
	cases := []struct {
		entity Entity
		kind   string
	}{
		{&Person{}, "person"},
		{&Booking{}, "booking"},
		{&Arrest{}, "arrest"},
		{&Charge{}, "charge"},
		{&Bond{}, "bond"},
		{&Sentence{}, "sentence"},
		{&Hold{}, "hold"},
	}
	for _, tc := range cases {
		if got := tc.entity.EntityKind(); got != tc.kind {
			t.Fatalf("expected kind %q, got %q", tc.kind, got)
		}
		if tc.entity.PrimaryKey() != 0 {
			t.Fatalf("fresh %s should have zero primary key", tc.kind)
		}
	}
}
