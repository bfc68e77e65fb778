package periods

import (
	"errors"
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func closedPeriod(admission, release time.Time, admissionReason AdmissionReason, releaseReason ReleaseReason) Period {
	return Period{
		Status:          StatusNotInCustody,
		AdmissionDate:   admission,
		AdmissionReason: admissionReason,
		ReleaseDate:     release,
		ReleaseReason:   releaseReason,
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := NewNormalizer(nil)
	out, err := n.Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no periods, got %d", len(out))
	}
}

func TestNormalizeSortsByAdmissionDate(t *testing.T) {
	n := NewNormalizer(nil)
	later := closedPeriod(date(2012, time.May, 1), date(2014, time.June, 1), AdmissionNewAdmission, ReleaseSentenceServed)
	earlier := closedPeriod(date(2008, time.January, 1), date(2010, time.February, 1), AdmissionNewAdmission, ReleaseSentenceServed)

	out, err := n.Normalize([]Period{later, earlier})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(out))
	}
	if !out[0].AdmissionDate.Equal(earlier.AdmissionDate) {
		t.Errorf("periods not sorted: first admission %v", out[0].AdmissionDate)
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	n := NewNormalizer(nil)
	input := []Period{
		closedPeriod(date(2012, time.May, 1), date(2014, time.June, 1), AdmissionNewAdmission, ReleaseSentenceServed),
		closedPeriod(date(2008, time.January, 1), date(2010, time.February, 1), AdmissionNewAdmission, ReleaseSentenceServed),
	}
	if _, err := n.Normalize(input); err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if !input[0].AdmissionDate.Equal(date(2012, time.May, 1)) {
		t.Error("input slice was reordered")
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		period Period
	}{
		{"no admission date", Period{
			Status:          StatusInCustody,
			AdmissionReason: AdmissionNewAdmission,
		}},
		{"no admission reason", Period{
			Status:        StatusInCustody,
			AdmissionDate: date(2020, time.January, 1),
		}},
		{"no status", Period{
			AdmissionDate:   date(2020, time.January, 1),
			AdmissionReason: AdmissionNewAdmission,
		}},
		{"released without release date", Period{
			Status:          StatusNotInCustody,
			AdmissionDate:   date(2020, time.January, 1),
			AdmissionReason: AdmissionNewAdmission,
			ReleaseReason:   ReleaseSentenceServed,
		}},
		{"released without release reason", Period{
			Status:          StatusNotInCustody,
			AdmissionDate:   date(2020, time.January, 1),
			AdmissionReason: AdmissionNewAdmission,
			ReleaseDate:     date(2021, time.January, 1),
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate([]Period{tc.period})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() = %v, want ErrValidation", err)
			}
		})
	}
}

func TestValidateAcceptsOpenPeriodWithoutRelease(t *testing.T) {
	period := Period{
		Status:          StatusInCustody,
		AdmissionDate:   date(2020, time.January, 1),
		AdmissionReason: AdmissionNewAdmission,
	}
	if err := Validate([]Period{period}); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestCollapseMergesTransferChain(t *testing.T) {
	n := NewNormalizer(nil)
	first := closedPeriod(date(2010, time.January, 1), date(2010, time.June, 1), AdmissionNewAdmission, ReleaseTransfer)
	first.Facility = "FACILITY A"
	second := closedPeriod(date(2010, time.June, 1), date(2012, time.March, 1), AdmissionTransfer, ReleaseSentenceServed)
	second.Facility = "FACILITY B"

	out, err := n.Normalize([]Period{first, second})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 collapsed period, got %d", len(out))
	}

	merged := out[0]
	if !merged.AdmissionDate.Equal(first.AdmissionDate) {
		t.Errorf("admission date = %v, want start of chain", merged.AdmissionDate)
	}
	if merged.AdmissionReason != AdmissionNewAdmission {
		t.Errorf("admission reason = %q, want new_admission", merged.AdmissionReason)
	}
	if !merged.ReleaseDate.Equal(second.ReleaseDate) {
		t.Errorf("release date = %v, want end of chain", merged.ReleaseDate)
	}
	if merged.ReleaseReason != ReleaseSentenceServed {
		t.Errorf("release reason = %q, want sentence_served", merged.ReleaseReason)
	}
	if merged.Facility != "FACILITY B" {
		t.Errorf("facility = %q, want the receiving facility", merged.Facility)
	}
}

func TestCollapseThreeWayTransferChain(t *testing.T) {
	n := NewNormalizer(nil)
	input := []Period{
		closedPeriod(date(2010, time.January, 1), date(2010, time.June, 1), AdmissionNewAdmission, ReleaseTransfer),
		closedPeriod(date(2010, time.June, 1), date(2011, time.January, 1), AdmissionTransfer, ReleaseTransfer),
		closedPeriod(date(2011, time.January, 1), date(2012, time.March, 1), AdmissionTransfer, ReleaseConditional),
	}
	out, err := n.Normalize(input)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 collapsed period, got %d", len(out))
	}
	if out[0].ReleaseReason != ReleaseConditional {
		t.Errorf("release reason = %q, want conditional_release", out[0].ReleaseReason)
	}
}

func TestCollapseLeavesUnrelatedPeriodsAlone(t *testing.T) {
	n := NewNormalizer(nil)
	input := []Period{
		closedPeriod(date(2008, time.January, 1), date(2010, time.February, 1), AdmissionNewAdmission, ReleaseSentenceServed),
		closedPeriod(date(2011, time.April, 5), date(2014, time.April, 14), AdmissionNewAdmission, ReleaseSentenceServed),
	}
	out, err := n.Normalize(input)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(out))
	}
}

func TestCollapseKeepsUnmatchedTransferRelease(t *testing.T) {
	n := NewNormalizer(nil)
	input := []Period{
		closedPeriod(date(2010, time.January, 1), date(2010, time.June, 1), AdmissionNewAdmission, ReleaseTransfer),
		closedPeriod(date(2011, time.April, 5), date(2014, time.April, 14), AdmissionNewAdmission, ReleaseSentenceServed),
	}
	out, err := n.Normalize(input)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected both periods kept, got %d", len(out))
	}
	if out[0].ReleaseReason != ReleaseTransfer {
		t.Errorf("dangling transfer release was rewritten: %q", out[0].ReleaseReason)
	}
}

func TestCollapseIsIdempotent(t *testing.T) {
	n := NewNormalizer(nil)
	input := []Period{
		closedPeriod(date(2010, time.January, 1), date(2010, time.June, 1), AdmissionNewAdmission, ReleaseTransfer),
		closedPeriod(date(2010, time.June, 1), date(2012, time.March, 1), AdmissionTransfer, ReleaseSentenceServed),
	}
	once, err := n.Normalize(input)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	twice := n.Collapse(once)
	if len(twice) != len(once) {
		t.Fatalf("collapse not idempotent: %d then %d", len(once), len(twice))
	}
	if !twice[0].AdmissionDate.Equal(once[0].AdmissionDate) || twice[0].ReleaseReason != once[0].ReleaseReason {
		t.Error("second collapse changed period contents")
	}
}
