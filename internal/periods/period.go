package periods

import "time"

// Status describes whether the person remains in custody for a period.
type Status string

const (
	StatusInCustody          Status = "in_custody"
	StatusNotInCustody       Status = "not_in_custody"
	StatusPresentWithoutInfo Status = "present_without_info"
)

// AdmissionReason describes why an incarceration period began.
type AdmissionReason string

const (
	AdmissionNewAdmission                AdmissionReason = "new_admission"
	AdmissionTransfer                    AdmissionReason = "transfer"
	AdmissionParoleRevocation            AdmissionReason = "parole_revocation"
	AdmissionProbationRevocation         AdmissionReason = "probation_revocation"
	AdmissionReturnFromEscape            AdmissionReason = "return_from_escape"
	AdmissionReturnFromErroneousRelease  AdmissionReason = "return_from_erroneous_release"
	AdmissionAdmittedInError             AdmissionReason = "admitted_in_error"
	AdmissionExternalUnknown             AdmissionReason = "external_unknown"
)

// ReleaseReason describes why an incarceration period ended.
type ReleaseReason string

const (
	ReleaseSentenceServed     ReleaseReason = "sentence_served"
	ReleaseConditional        ReleaseReason = "conditional_release"
	ReleaseTransfer           ReleaseReason = "transfer"
	ReleaseDeath              ReleaseReason = "death"
	ReleaseEscape             ReleaseReason = "escape"
	ReleaseReleasedInError    ReleaseReason = "released_in_error"
	ReleaseCommuted           ReleaseReason = "commuted"
	ReleaseCourtOrder         ReleaseReason = "court_order"
	ReleaseExternalUnknown    ReleaseReason = "external_unknown"
)

// Period is one contiguous incarceration stay as reported by a state system.
// ReleaseDate and ReleaseReason are unset only while Status is in custody.
type Period struct {
	ID                            int64
	ExternalID                    string
	StateCode                     string
	Status                        Status
	AdmissionDate                 time.Time
	AdmissionReason               AdmissionReason
	ReleaseDate                   time.Time
	ReleaseReason                 ReleaseReason
	ReleaseReasonRawText          string
	Facility                      string
	HousingUnit                   string
	SecurityLevel                 string
	SecurityLevelRawText          string
	ProjectedReleaseReason        string
	ProjectedReleaseReasonRawText string
}
