package recidivism

import "time"

// ReturnType distinguishes how a person came back into custody.
type ReturnType string

const (
	ReturnNewAdmission ReturnType = "new_admission"
	ReturnRevocation   ReturnType = "revocation"
)

// FromSupervisionType names the supervision a revocation return came from.
// Empty for returns that were not revocations.
type FromSupervisionType string

const (
	FromSupervisionParole    FromSupervisionType = "parole"
	FromSupervisionProbation FromSupervisionType = "probation"
)

// ReleaseEvent is the classification of one period's release. Events are
// bucketed by ReleaseCohort, the calendar year of the release date.
type ReleaseEvent interface {
	ReleaseCohort() int
	releaseEvent()
}

// ReleaseDetails carries the fields common to both event variants.
type ReleaseDetails struct {
	OriginalAdmissionDate time.Time
	ReleaseDate           time.Time
	ReleaseFacility       string
}

// ReleaseCohort returns the calendar year of the release.
func (d ReleaseDetails) ReleaseCohort() int { return d.ReleaseDate.Year() }

// RecidivismReleaseEvent is a release followed by reincarceration.
type RecidivismReleaseEvent struct {
	ReleaseDetails
	ReincarcerationDate     time.Time
	ReincarcerationFacility string
	ReturnType              ReturnType
	FromSupervisionType     FromSupervisionType
}

func (RecidivismReleaseEvent) releaseEvent() {}

// NonRecidivismReleaseEvent is a legitimate release with no recorded return.
type NonRecidivismReleaseEvent struct {
	ReleaseDetails
}

func (NonRecidivismReleaseEvent) releaseEvent() {}
