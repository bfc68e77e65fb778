package ingest

import (
	"fmt"
	"strings"
	"time"

	"docket/internal/entities"
	"docket/internal/periods"
)

// recordDate is a bare YYYY-MM-DD date in a record file. Absent and null
// dates decode to the zero time.
type recordDate struct {
	time.Time
}

func (d *recordDate) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

// personRecord is one scraped person graph as the extractor emits it.
type personRecord struct {
	ExternalID        string          `json:"external_id"`
	FullName          string          `json:"full_name"`
	Birthdate         recordDate      `json:"birthdate"`
	BirthdateInferred bool            `json:"birthdate_inferred"`
	Gender            string          `json:"gender"`
	Race              string          `json:"race"`
	Bookings          []bookingRecord `json:"bookings"`
}

type bookingRecord struct {
	ExternalID            string         `json:"external_id"`
	AdmissionDate         recordDate     `json:"admission_date"`
	AdmissionDateInferred bool           `json:"admission_date_inferred"`
	ReleaseDate           recordDate     `json:"release_date"`
	ReleaseDateInferred   bool           `json:"release_date_inferred"`
	ProjectedReleaseDate  recordDate     `json:"projected_release_date"`
	ReleaseReason         string         `json:"release_reason"`
	CustodyStatus         string         `json:"custody_status"`
	Facility              string         `json:"facility"`
	Classification        string         `json:"classification"`
	Arrest                *arrestRecord  `json:"arrest"`
	Holds                 []holdRecord   `json:"holds"`
	Charges               []chargeRecord `json:"charges"`
}

type arrestRecord struct {
	ExternalID  string     `json:"external_id"`
	Date        recordDate `json:"date"`
	Location    string     `json:"location"`
	Agency      string     `json:"agency"`
	OfficerName string     `json:"officer_name"`
}

type holdRecord struct {
	ExternalID       string `json:"external_id"`
	JurisdictionName string `json:"jurisdiction_name"`
	Status           string `json:"status"`
}

type chargeRecord struct {
	ExternalID     string          `json:"external_id"`
	OffenseDate    recordDate      `json:"offense_date"`
	Statute        string          `json:"statute"`
	Name           string          `json:"name"`
	Degree         string          `json:"degree"`
	Class          string          `json:"class"`
	Level          string          `json:"level"`
	FeeDollars     int64           `json:"fee_dollars"`
	ChargingEntity string          `json:"charging_entity"`
	Status         string          `json:"status"`
	CourtType      string          `json:"court_type"`
	CaseNumber     string          `json:"case_number"`
	NextCourtDate  recordDate      `json:"next_court_date"`
	JudgeName      string          `json:"judge_name"`
	BondRef        string          `json:"bond_ref"`
	SentenceRef    string          `json:"sentence_ref"`
	Bond           *bondRecord     `json:"bond"`
	Sentence       *sentenceRecord `json:"sentence"`
}

type bondRecord struct {
	ExternalID    string `json:"external_id"`
	AmountDollars int64  `json:"amount_dollars"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Agent         string `json:"agent"`
}

type sentenceRecord struct {
	ExternalID       string `json:"external_id"`
	Status           string `json:"status"`
	SentencingRegion string `json:"sentencing_region"`
	MinLengthDays    int    `json:"min_length_days"`
	MaxLengthDays    int    `json:"max_length_days"`
	IsLife           bool   `json:"is_life"`
	IsProbation      bool   `json:"is_probation"`
	IsSuspended      bool   `json:"is_suspended"`
	FineDollars      int64  `json:"fine_dollars"`
	ParolePossible   bool   `json:"parole_possible"`
}

// periodFileEntry groups the incarceration periods of one person in a period
// record file.
type periodFileEntry struct {
	PersonExternalID string         `json:"person_external_id"`
	Periods          []periodRecord `json:"periods"`
}

type periodRecord struct {
	ExternalID                    string     `json:"external_id"`
	StateCode                     string     `json:"state_code"`
	Status                        string     `json:"status"`
	AdmissionDate                 recordDate `json:"admission_date"`
	AdmissionReason               string     `json:"admission_reason"`
	ReleaseDate                   recordDate `json:"release_date"`
	ReleaseReason                 string     `json:"release_reason"`
	ReleaseReasonRawText          string     `json:"release_reason_raw_text"`
	Facility                      string     `json:"facility"`
	HousingUnit                   string     `json:"housing_unit"`
	SecurityLevel                 string     `json:"security_level"`
	SecurityLevelRawText          string     `json:"security_level_raw_text"`
	ProjectedReleaseReason        string     `json:"projected_release_reason"`
	ProjectedReleaseReasonRawText string     `json:"projected_release_reason_raw_text"`
}

// toEntity converts a person record into the domain graph. Charges sharing a
// bond or sentence express it with a bond_ref/sentence_ref marker: charges in
// one booking carrying the same non-empty ref share a single instance.
func (r personRecord) toEntity(region string) *entities.Person {
	person := &entities.Person{
		ExternalID:        r.ExternalID,
		Region:            region,
		FullName:          r.FullName,
		Birthdate:         r.Birthdate.Time,
		BirthdateInferred: r.BirthdateInferred,
		Gender:            r.Gender,
		Race:              r.Race,
	}
	for _, b := range r.Bookings {
		person.Bookings = append(person.Bookings, b.toEntity())
	}
	return person
}

func (r bookingRecord) toEntity() *entities.Booking {
	booking := &entities.Booking{
		ExternalID:            r.ExternalID,
		AdmissionDate:         r.AdmissionDate.Time,
		AdmissionDateInferred: r.AdmissionDateInferred,
		ReleaseDate:           r.ReleaseDate.Time,
		ReleaseDateInferred:   r.ReleaseDateInferred,
		ProjectedReleaseDate:  r.ProjectedReleaseDate.Time,
		ReleaseReason:         r.ReleaseReason,
		CustodyStatus:         entities.CustodyStatus(r.CustodyStatus),
		Facility:              r.Facility,
		Classification:        r.Classification,
	}
	if r.Arrest != nil {
		booking.Arrest = &entities.Arrest{
			ExternalID:  r.Arrest.ExternalID,
			Date:        r.Arrest.Date.Time,
			Location:    r.Arrest.Location,
			Agency:      r.Arrest.Agency,
			OfficerName: r.Arrest.OfficerName,
		}
	}
	for _, h := range r.Holds {
		booking.Holds = append(booking.Holds, &entities.Hold{
			ExternalID:       h.ExternalID,
			JurisdictionName: h.JurisdictionName,
			Status:           entities.HoldStatus(h.Status),
		})
	}

	sharedBonds := make(map[string]*entities.Bond)
	sharedSentences := make(map[string]*entities.Sentence)
	for _, c := range r.Charges {
		charge := &entities.Charge{
			ExternalID:     c.ExternalID,
			OffenseDate:    c.OffenseDate.Time,
			Statute:        c.Statute,
			Name:           c.Name,
			Degree:         c.Degree,
			Class:          c.Class,
			Level:          c.Level,
			FeeDollars:     c.FeeDollars,
			ChargingEntity: c.ChargingEntity,
			Status:         entities.ChargeStatus(c.Status),
			CourtType:      c.CourtType,
			CaseNumber:     c.CaseNumber,
			NextCourtDate:  c.NextCourtDate.Time,
			JudgeName:      c.JudgeName,
		}
		if c.Bond != nil {
			if c.BondRef != "" {
				if shared, ok := sharedBonds[c.BondRef]; ok {
					charge.Bond = shared
				} else {
					charge.Bond = c.Bond.toEntity()
					sharedBonds[c.BondRef] = charge.Bond
				}
			} else {
				charge.Bond = c.Bond.toEntity()
			}
		}
		if c.Sentence != nil {
			if c.SentenceRef != "" {
				if shared, ok := sharedSentences[c.SentenceRef]; ok {
					charge.Sentence = shared
				} else {
					charge.Sentence = c.Sentence.toEntity()
					sharedSentences[c.SentenceRef] = charge.Sentence
				}
			} else {
				charge.Sentence = c.Sentence.toEntity()
			}
		}
		booking.Charges = append(booking.Charges, charge)
	}
	return booking
}

func (r *bondRecord) toEntity() *entities.Bond {
	return &entities.Bond{
		ExternalID:    r.ExternalID,
		AmountDollars: r.AmountDollars,
		Type:          r.Type,
		Status:        entities.BondStatus(r.Status),
		Agent:         r.Agent,
	}
}

func (r *sentenceRecord) toEntity() *entities.Sentence {
	return &entities.Sentence{
		ExternalID:       r.ExternalID,
		Status:           entities.SentenceStatus(r.Status),
		SentencingRegion: r.SentencingRegion,
		MinLengthDays:    r.MinLengthDays,
		MaxLengthDays:    r.MaxLengthDays,
		IsLife:           r.IsLife,
		IsProbation:      r.IsProbation,
		IsSuspended:      r.IsSuspended,
		FineDollars:      r.FineDollars,
		ParolePossible:   r.ParolePossible,
	}
}

func (r periodRecord) toPeriod() periods.Period {
	return periods.Period{
		ExternalID:                    r.ExternalID,
		StateCode:                     r.StateCode,
		Status:                        periods.Status(r.Status),
		AdmissionDate:                 r.AdmissionDate.Time,
		AdmissionReason:               periods.AdmissionReason(r.AdmissionReason),
		ReleaseDate:                   r.ReleaseDate.Time,
		ReleaseReason:                 periods.ReleaseReason(r.ReleaseReason),
		ReleaseReasonRawText:          r.ReleaseReasonRawText,
		Facility:                      r.Facility,
		HousingUnit:                   r.HousingUnit,
		SecurityLevel:                 r.SecurityLevel,
		SecurityLevelRawText:          r.SecurityLevelRawText,
		ProjectedReleaseReason:        r.ProjectedReleaseReason,
		ProjectedReleaseReasonRawText: r.ProjectedReleaseReasonRawText,
	}
}
