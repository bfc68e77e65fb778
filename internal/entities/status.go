package entities

// CustodyStatus describes where a booking stands in the custody lifecycle.
type CustodyStatus string

const (
	CustodyHeld               CustodyStatus = "in_custody"
	CustodyReleased           CustodyStatus = "released"
	CustodyEscaped            CustodyStatus = "escaped"
	CustodyInferredRelease    CustodyStatus = "inferred_release"
	CustodyPresentWithoutInfo CustodyStatus = "present_without_info"
	CustodyRemovedWithoutInfo CustodyStatus = "removed_without_info"
)

// ChargeStatus describes the adjudication state of a charge.
type ChargeStatus string

const (
	ChargeAcquitted          ChargeStatus = "acquitted"
	ChargeCompletedSentence  ChargeStatus = "completed_sentence"
	ChargeConvicted          ChargeStatus = "convicted"
	ChargeDropped            ChargeStatus = "dropped"
	ChargeExternalUnknown    ChargeStatus = "external_unknown"
	ChargeInferredDropped    ChargeStatus = "inferred_dropped"
	ChargePending            ChargeStatus = "pending"
	ChargePretrial           ChargeStatus = "pretrial"
	ChargeSentenced          ChargeStatus = "sentenced"
	ChargePresentWithoutInfo ChargeStatus = "present_without_info"
)

// BondStatus describes the state of a bond attached to one or more charges.
type BondStatus string

const (
	BondPending            BondStatus = "pending"
	BondPosted             BondStatus = "posted"
	BondRevoked            BondStatus = "revoked"
	BondSet                BondStatus = "set"
	BondPresentWithoutInfo BondStatus = "present_without_info"
	BondRemovedWithoutInfo BondStatus = "removed_without_info"
)

// SentenceStatus describes the state of a sentence attached to one or more charges.
type SentenceStatus string

const (
	SentenceCommuted           SentenceStatus = "commuted"
	SentenceCompleted          SentenceStatus = "completed"
	SentenceServing            SentenceStatus = "serving"
	SentencePresentWithoutInfo SentenceStatus = "present_without_info"
	SentenceRemovedWithoutInfo SentenceStatus = "removed_without_info"
)

// HoldStatus describes the state of a hold placed by another jurisdiction.
type HoldStatus string

const (
	HoldActive             HoldStatus = "active"
	HoldInactive           HoldStatus = "inactive"
	HoldInferredDropped    HoldStatus = "inferred_dropped"
	HoldPresentWithoutInfo HoldStatus = "present_without_info"
)
