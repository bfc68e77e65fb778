package entities

import "time"

// Entity is implemented by every node in the booking tree. PrimaryKey returns
// the internal database key, or zero when the entity has not been persisted.
type Entity interface {
	EntityKind() string
	PrimaryKey() int64
}

// Person is the root of the ownership tree for one real-world individual
// within a region.
type Person struct {
	ID                int64
	ExternalID        string
	Region            string
	FullName          string
	Birthdate         time.Time
	BirthdateInferred bool
	Gender            string
	Race              string
	Bookings          []*Booking
}

func (p *Person) EntityKind() string { return "person" }
func (p *Person) PrimaryKey() int64  { return p.ID }

// HasOpenBooking reports whether any booking on the person is still open,
// i.e. has no release date recorded.
func (p *Person) HasOpenBooking() bool {
	for _, b := range p.Bookings {
		if b.ReleaseDate.IsZero() {
			return true
		}
	}
	return false
}

// Booking is one jail admission. AdmissionDateInferred marks dates estimated
// from scrape time rather than reported by the source.
type Booking struct {
	ID                    int64
	ExternalID            string
	AdmissionDate         time.Time
	AdmissionDateInferred bool
	ReleaseDate           time.Time
	ReleaseDateInferred   bool
	ProjectedReleaseDate  time.Time
	ReleaseReason         string
	CustodyStatus         CustodyStatus
	Facility              string
	Classification        string
	Arrest                *Arrest
	Holds                 []*Hold
	Charges               []*Charge
}

func (b *Booking) EntityKind() string { return "booking" }
func (b *Booking) PrimaryKey() int64  { return b.ID }

// Arrest records the apprehension that led to a booking.
type Arrest struct {
	ID          int64
	ExternalID  string
	Date        time.Time
	Location    string
	Agency      string
	OfficerName string
}

func (a *Arrest) EntityKind() string { return "arrest" }
func (a *Arrest) PrimaryKey() int64  { return a.ID }

// Charge is a single count booked against a person. Bond and Sentence are
// optional children; several charges may share one bond or sentence instance.
type Charge struct {
	ID             int64
	ExternalID     string
	OffenseDate    time.Time
	Statute        string
	Name           string
	Degree         string
	Class          string
	Level          string
	FeeDollars     int64
	ChargingEntity string
	Status         ChargeStatus
	CourtType      string
	CaseNumber     string
	NextCourtDate  time.Time
	JudgeName      string
	Bond           *Bond
	Sentence       *Sentence
}

func (c *Charge) EntityKind() string { return "charge" }
func (c *Charge) PrimaryKey() int64  { return c.ID }

// ChildCount returns the number of bond/sentence children attached to the
// charge. Charge matching sorts by this so charges richer in children claim
// database candidates first.
func (c *Charge) ChildCount() int {
	count := 0
	if c.Bond != nil {
		count++
	}
	if c.Sentence != nil {
		count++
	}
	return count
}

// Bond secures release for one or more charges.
type Bond struct {
	ID            int64
	ExternalID    string
	AmountDollars int64
	Type          string
	Status        BondStatus
	Agent         string
}

func (b *Bond) EntityKind() string { return "bond" }
func (b *Bond) PrimaryKey() int64  { return b.ID }

// Sentence is the disposition handed down for one or more charges.
type Sentence struct {
	ID               int64
	ExternalID       string
	Status           SentenceStatus
	SentencingRegion string
	MinLengthDays    int
	MaxLengthDays    int
	IsLife           bool
	IsProbation      bool
	IsSuspended      bool
	FineDollars      int64
	ParolePossible   bool
}

func (s *Sentence) EntityKind() string { return "sentence" }
func (s *Sentence) PrimaryKey() int64  { return s.ID }

// Hold is a detainer placed on a booking by another jurisdiction.
type Hold struct {
	ID               int64
	ExternalID       string
	JurisdictionName string
	Status           HoldStatus
}

func (h *Hold) EntityKind() string { return "hold" }
func (h *Hold) PrimaryKey() int64  { return h.ID }
