package recidivism

import (
	"errors"
	"fmt"
	"log/slog"

	"docket/internal/logging"
	"docket/internal/periods"
)

// ErrUnhandledEnum marks a release or admission reason with no entry in the
// classification tables. Validated input should never trigger it; hitting it
// means the tables have a gap.
var ErrUnhandledEnum = errors.New("unhandled enum value")

// Identifier turns one person's incarceration periods into release events.
type Identifier struct {
	logger     *slog.Logger
	normalizer *periods.Normalizer
}

// NewIdentifier constructs an Identifier. A nil logger is replaced with a
// no-op logger.
func NewIdentifier(logger *slog.Logger) *Identifier {
	return &Identifier{
		logger:     logging.NewComponentLogger(logger, "recidivism"),
		normalizer: periods.NewNormalizer(logger),
	}
}

// FindReleaseEvents normalizes the supplied periods and classifies each
// release, returning events keyed by release-cohort year.
func (i *Identifier) FindReleaseEvents(input []periods.Period) (map[int][]ReleaseEvent, error) {
	normalized, err := i.normalizer.Normalize(input)
	if err != nil {
		return nil, err
	}
	return i.EventsByCohort(normalized)
}

// EventsByCohort classifies already-normalized periods. Callers almost always
// want FindReleaseEvents; this entry point exists so classification can be
// re-run on a collapsed list without re-validating.
func (i *Identifier) EventsByCohort(normalized []periods.Period) (map[int][]ReleaseEvent, error) {
	events := make(map[int][]ReleaseEvent)

	for index, period := range normalized {
		if period.AdmissionDate.IsZero() {
			return nil, fmt.Errorf("admission date missing on period %q after validation", period.ExternalID)
		}
		if period.Status == "" {
			return nil, fmt.Errorf("status missing on period %q after validation", period.ExternalID)
		}

		var event ReleaseEvent
		var err error
		if index == len(normalized)-1 {
			event, err = i.forLastPeriod(period)
		} else {
			event, err = i.forIntermediatePeriod(period, normalized[index+1])
		}
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}
		cohort := event.ReleaseCohort()
		events[cohort] = append(events[cohort], event)
	}

	return events, nil
}

// forLastPeriod classifies the most recent period. Only legitimate releases
// produce an event; a person still in custody, or released by death, escape,
// error, or transfer, is not part of any release cohort.
func (i *Identifier) forLastPeriod(period periods.Period) (ReleaseEvent, error) {
	if period.Status == periods.StatusInCustody {
		return nil, nil
	}
	if period.ReleaseDate.IsZero() {
		return nil, fmt.Errorf("release date missing on released period %q after validation", period.ExternalID)
	}

	switch period.ReleaseReason {
	case periods.ReleaseDeath, periods.ReleaseEscape, periods.ReleaseReleasedInError, periods.ReleaseTransfer:
		return nil, nil
	case periods.ReleaseConditional, periods.ReleaseSentenceServed:
		return NonRecidivismReleaseEvent{ReleaseDetails{
			OriginalAdmissionDate: period.AdmissionDate,
			ReleaseDate:           period.ReleaseDate,
			ReleaseFacility:       period.Facility,
		}}, nil
	default:
		return nil, fmt.Errorf("%w: release reason %q on last period", ErrUnhandledEnum, period.ReleaseReason)
	}
}

// forIntermediatePeriod classifies a period that has a subsequent admission
// on record, i.e. a candidate recidivism event.
func (i *Identifier) forIntermediatePeriod(period, next periods.Period) (ReleaseEvent, error) {
	if period.ReleaseDate.IsZero() || period.ReleaseReason == "" {
		return nil, fmt.Errorf("release fields missing on intermediate period %q after validation", period.ExternalID)
	}
	if next.AdmissionDate.IsZero() || next.AdmissionReason == "" {
		return nil, fmt.Errorf("admission fields missing on reincarceration period %q after validation", next.ExternalID)
	}

	include, err := i.shouldIncludeInReleaseCohort(period.ReleaseReason, next.AdmissionReason)
	if err != nil {
		return nil, err
	}
	if !include {
		return nil, nil
	}

	returnType, err := returnTypeFor(next.AdmissionReason)
	if err != nil {
		return nil, err
	}

	return RecidivismReleaseEvent{
		ReleaseDetails: ReleaseDetails{
			OriginalAdmissionDate: period.AdmissionDate,
			ReleaseDate:           period.ReleaseDate,
			ReleaseFacility:       period.Facility,
		},
		ReincarcerationDate:     next.AdmissionDate,
		ReincarcerationFacility: next.Facility,
		ReturnType:              returnType,
		FromSupervisionType:     fromSupervisionTypeFor(next.AdmissionReason),
	}, nil
}

// shouldIncludeInReleaseCohort decides whether a release-reason/readmission-
// reason pair belongs in the release cohort. Anomalous pairs are logged and
// excluded; the record itself is still processed.
func (i *Identifier) shouldIncludeInReleaseCohort(release periods.ReleaseReason, readmission periods.AdmissionReason) (bool, error) {
	switch release {
	case periods.ReleaseDeath:
		i.logger.Info("incarceration period follows a release for death",
			logging.String("admission_reason", string(readmission)))
		return false, nil
	case periods.ReleaseEscape:
		if readmission != periods.AdmissionReturnFromEscape {
			i.logger.Info("unexpected admission reason after an escape",
				logging.String("admission_reason", string(readmission)))
		}
		return false, nil
	case periods.ReleaseReleasedInError:
		if readmission != periods.AdmissionReturnFromErroneousRelease {
			i.logger.Info("unexpected admission reason after an erroneous release",
				logging.String("admission_reason", string(readmission)))
		}
		return false, nil
	case periods.ReleaseTransfer:
		// A transfer release reaching classification means collapsing did not
		// join it to a transfer admission.
		i.logger.Warn("uncollapsed transfer release reached classification",
			logging.String("admission_reason", string(readmission)))
		return false, nil
	case periods.ReleaseCommuted,
		periods.ReleaseConditional,
		periods.ReleaseCourtOrder,
		periods.ReleaseExternalUnknown,
		periods.ReleaseSentenceServed:
		if readmission == periods.AdmissionReturnFromEscape ||
			readmission == periods.AdmissionReturnFromErroneousRelease {
			i.logger.Info("return from escape or erroneous release after a legitimate release",
				logging.String("release_reason", string(release)),
				logging.String("admission_reason", string(readmission)))
			return false, nil
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: release reason %q on intermediate period", ErrUnhandledEnum, release)
	}
}

// returnTypeFor maps a readmission reason to a return type. Transfer is a
// best-guess new admission: the person did come back into custody, and with
// no further information a new admission is the most likely route.
func returnTypeFor(readmission periods.AdmissionReason) (ReturnType, error) {
	switch readmission {
	case periods.AdmissionAdmittedInError,
		periods.AdmissionExternalUnknown,
		periods.AdmissionNewAdmission,
		periods.AdmissionTransfer:
		return ReturnNewAdmission, nil
	case periods.AdmissionParoleRevocation, periods.AdmissionProbationRevocation:
		return ReturnRevocation, nil
	case periods.AdmissionReturnFromEscape, periods.AdmissionReturnFromErroneousRelease:
		return "", fmt.Errorf("admission reason %q should have been excluded from the release cohort", readmission)
	default:
		return "", fmt.Errorf("%w: admission reason %q on reincarceration", ErrUnhandledEnum, readmission)
	}
}

// fromSupervisionTypeFor names the supervision a revocation came from. Empty
// for every non-revocation readmission.
func fromSupervisionTypeFor(readmission periods.AdmissionReason) FromSupervisionType {
	switch readmission {
	case periods.AdmissionParoleRevocation:
		return FromSupervisionParole
	case periods.AdmissionProbationRevocation:
		return FromSupervisionProbation
	default:
		return ""
	}
}
