package periods

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"docket/internal/logging"
)

// ErrValidation marks period lists that are missing required fields. The
// whole list is rejected; partial normalization of malformed source data is
// not attempted.
var ErrValidation = errors.New("period validation failed")

// Normalizer prepares raw incarceration periods for classification.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer constructs a Normalizer. A nil logger is replaced with a
// no-op logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logging.NewComponentLogger(logger, "periods")}
}

// Normalize validates, sorts, and collapses the supplied periods. The input
// slice is not modified; an empty input yields an empty output.
func (n *Normalizer) Normalize(input []Period) ([]Period, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	sorted := make([]Period, len(input))
	copy(sorted, input)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AdmissionDate.Before(sorted[j].AdmissionDate)
	})

	return n.Collapse(sorted), nil
}

// Validate checks that every period carries the fields classification relies
// on: admission date, admission reason, and status always; release date and
// release reason unless the person is still in custody.
func Validate(input []Period) error {
	for _, period := range input {
		if period.AdmissionDate.IsZero() {
			return fmt.Errorf("%w: no admission date on period %q", ErrValidation, period.ExternalID)
		}
		if period.AdmissionReason == "" {
			return fmt.Errorf("%w: no admission reason on period %q", ErrValidation, period.ExternalID)
		}
		if period.Status == "" {
			return fmt.Errorf("%w: no status on period %q", ErrValidation, period.ExternalID)
		}
		if period.Status != StatusInCustody {
			if period.ReleaseDate.IsZero() {
				return fmt.Errorf("%w: no release date on released period %q", ErrValidation, period.ExternalID)
			}
			if period.ReleaseReason == "" {
				return fmt.Errorf("%w: no release reason on released period %q", ErrValidation, period.ExternalID)
			}
		}
	}
	return nil
}

// Collapse merges adjacent periods connected by a transfer: the earlier
// period released via TRANSFER and the later admitted via TRANSFER become one
// period spanning both stays. The input must already be sorted by admission
// date. Collapsing an already-collapsed list returns it unchanged.
func (n *Normalizer) Collapse(sorted []Period) []Period {
	collapsed := make([]Period, 0, len(sorted))
	openTransfer := false

	for _, period := range sorted {
		if openTransfer && period.AdmissionReason == AdmissionTransfer {
			start := collapsed[len(collapsed)-1]
			collapsed[len(collapsed)-1] = combine(start, period)
		} else {
			if openTransfer {
				// A transfer out with no transfer in behind it usually means
				// the continuation happened in a system we cannot see. Keep
				// both periods separate and note the gap.
				n.logger.Warn("transfer release not followed by transfer admission",
					logging.String("period", period.ExternalID),
					logging.String("admission_reason", string(period.AdmissionReason)))
			}
			collapsed = append(collapsed, period)
		}

		openTransfer = period.ReleaseReason == ReleaseTransfer
	}

	return collapsed
}

// combine folds the end period's release-side fields onto the start period.
// Identity, admission fields, and state code stay with start.
func combine(start, end Period) Period {
	merged := start
	merged.Status = end.Status
	merged.ReleaseDate = end.ReleaseDate
	merged.ReleaseReason = end.ReleaseReason
	merged.ReleaseReasonRawText = end.ReleaseReasonRawText
	merged.Facility = end.Facility
	merged.HousingUnit = end.HousingUnit
	merged.SecurityLevel = end.SecurityLevel
	merged.SecurityLevelRawText = end.SecurityLevelRawText
	merged.ProjectedReleaseReason = end.ProjectedReleaseReason
	merged.ProjectedReleaseReasonRawText = end.ProjectedReleaseReasonRawText
	return merged
}
