package matching

import (
	"sort"
	"strconv"

	"docket/internal/entities"
	"docket/internal/logging"
)

// matchCharges matches the charges of one matched booking pair. Charges are
// tried in descending child-count order so charges carrying a bond or
// sentence claim their database counterparts first, keeping existing
// bond/sentence links intact instead of churning them. The first pass
// requires the children to match as well; only when that finds nothing is a
// charge matched on its own fields. Greedy first-available assignment is
// deliberate here: several identical charges on one booking are routine, so
// multiple candidates are not an ambiguity error the way they are for people
// and bookings.
func (e *Engine) matchCharges(dbBooking, ingestedBooking *entities.Booking) {
	sorted := make([]*entities.Charge, len(ingestedBooking.Charges))
	copy(sorted, ingestedBooking.Charges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChildCount() > sorted[j].ChildCount()
	})

	claimed := make(map[int64]struct{})
	for _, ingestedCharge := range sorted {
		dbCharge := getNextAvailableMatch(ingestedCharge, dbBooking.Charges, claimed, e.chargeMatchWithChildren)
		if dbCharge == nil {
			dbCharge = getNextAvailableMatch(ingestedCharge, dbBooking.Charges, claimed, e.matchers.Charge)
		}
		if dbCharge == nil {
			continue
		}
		e.logger.Debug("matched charge", logging.Int64("charge_id", dbCharge.ID))
		ingestedCharge.ID = dbCharge.ID
		claimed[dbCharge.ID] = struct{}{}
	}

	var dropped []*entities.Charge
	for _, dbCharge := range dbBooking.Charges {
		if _, ok := claimed[dbCharge.ID]; !ok {
			e.dropCharge(dbCharge)
			dropped = append(dropped, dbCharge)
		}
	}
	ingestedBooking.Charges = append(ingestedBooking.Charges, dropped...)
}

// chargeMatchWithChildren applies the configured charge matcher plus the
// configured bond and sentence matchers to the charge's children.
func (e *Engine) chargeMatchWithChildren(db, ingested *entities.Charge) bool {
	if !e.matchers.Charge(db, ingested) {
		return false
	}
	if (db.Bond == nil) != (ingested.Bond == nil) {
		return false
	}
	if db.Bond != nil && !e.matchers.Bond(db.Bond, ingested.Bond) {
		return false
	}
	if (db.Sentence == nil) != (ingested.Sentence == nil) {
		return false
	}
	if db.Sentence != nil && !e.matchers.Sentence(db.Sentence, ingested.Sentence) {
		return false
	}
	return true
}

func (e *Engine) dropCharge(charge *entities.Charge) {
	if charge.Status != entities.ChargeInferredDropped {
		e.logger.Debug("dropping charge", logging.Int64("charge_id", charge.ID))
		charge.Status = entities.ChargeInferredDropped
	}
}

// matchBonds matches bonds reachable through the booking's charges. Unclaimed
// stored bonds are marked removed and reported as orphans rather than carried
// over onto the booking.
func (e *Engine) matchBonds(dbBooking, ingestedBooking *entities.Booking, orphaned *[]entities.Entity) {
	matchChargeChildren(e, "bond", dbBooking, ingestedBooking,
		func(c *entities.Charge) (*entities.Bond, bool) { return c.Bond, c.Bond != nil },
		func(b *entities.Bond, id int64) { b.ID = id },
		e.matchers.Bond,
		(*Engine).dropBond,
		orphaned)
}

// matchSentences mirrors matchBonds for sentences.
func (e *Engine) matchSentences(dbBooking, ingestedBooking *entities.Booking, orphaned *[]entities.Entity) {
	matchChargeChildren(e, "sentence", dbBooking, ingestedBooking,
		func(c *entities.Charge) (*entities.Sentence, bool) { return c.Sentence, c.Sentence != nil },
		func(s *entities.Sentence, id int64) { s.ID = id },
		e.matchers.Sentence,
		(*Engine).dropSentence,
		orphaned)
}

func (e *Engine) dropBond(bond *entities.Bond) {
	if bond.Status != entities.BondRemovedWithoutInfo {
		e.logger.Debug("removing bond", logging.Int64("bond_id", bond.ID))
		bond.Status = entities.BondRemovedWithoutInfo
	}
}

func (e *Engine) dropSentence(sentence *entities.Sentence) {
	if sentence.Status != entities.SentenceRemovedWithoutInfo {
		e.logger.Debug("removing sentence", logging.Int64("sentence_id", sentence.ID))
		sentence.Status = entities.SentenceRemovedWithoutInfo
	}
}

// childEntity constrains charge children to comparable entity pointers so
// instances can key maps directly.
type childEntity interface {
	entities.Entity
	comparable
}

// childMaps describes the bonds or sentences hanging off a charge list: every
// distinct instance addressable by id, and the set of charge ids referencing
// each one. Instances without a primary key get a generated id so sharing is
// still visible.
type childMaps[T childEntity] struct {
	order   []string
	objects map[string]T
	refs    map[string]map[int64]struct{}
}

func buildChildMaps[T childEntity](charges []*entities.Charge, child func(*entities.Charge) (T, bool)) childMaps[T] {
	maps := childMaps[T]{
		objects: make(map[string]T),
		refs:    make(map[string]map[int64]struct{}),
	}
	assigned := make(map[T]string)

	for _, charge := range charges {
		obj, ok := child(charge)
		if !ok {
			continue
		}
		id, seen := assigned[obj]
		if !seen {
			if pk := obj.PrimaryKey(); pk != 0 {
				id = strconv.FormatInt(pk, 10)
			} else {
				id = entities.NewGeneratedID()
			}
			assigned[obj] = id
		}
		if _, exists := maps.objects[id]; !exists {
			maps.order = append(maps.order, id)
			maps.objects[id] = obj
		}
		refs := maps.refs[id]
		if refs == nil {
			refs = make(map[int64]struct{})
			maps.refs[id] = refs
		}
		refs[charge.ID] = struct{}{}
	}

	return maps
}

// matchChargeChildren runs greedy first-available matching between the bonds
// or sentences of a stored and an ingested booking. A stored object matches
// an ingested one only if the fields agree and the stored object's set of
// referencing charge ids is a subset of the ingested one's: new charges may
// attach to an existing bond or sentence between scrapes, but a
// previously-confirmed link disappearing means the stored object is no longer
// the same record, so a new one is created and the old one removed.
func matchChargeChildren[T childEntity](
	e *Engine,
	kind string,
	dbBooking, ingestedBooking *entities.Booking,
	child func(*entities.Charge) (T, bool),
	setID func(T, int64),
	matcher func(db, ingested T) bool,
	drop func(*Engine, T),
	orphaned *[]entities.Entity,
) {
	dbMaps := buildChildMaps(dbBooking.Charges, child)
	ingestedMaps := buildChildMaps(ingestedBooking.Charges, child)

	claimed := make(map[int64]struct{})
	for _, ingestedID := range ingestedMaps.order {
		ingestedObj := ingestedMaps.objects[ingestedID]
		for _, dbID := range dbMaps.order {
			dbObj := dbMaps.objects[dbID]
			pk := dbObj.PrimaryKey()
			if _, ok := claimed[pk]; ok {
				continue
			}
			if !matcher(dbObj, ingestedObj) {
				continue
			}
			if !isSubset(dbMaps.refs[dbID], ingestedMaps.refs[ingestedID]) {
				continue
			}
			e.logger.Debug("matched "+kind, logging.Int64(kind+"_id", pk))
			setID(ingestedObj, pk)
			claimed[pk] = struct{}{}
			break
		}
	}

	for _, dbID := range dbMaps.order {
		dbObj := dbMaps.objects[dbID]
		if _, ok := claimed[dbObj.PrimaryKey()]; !ok {
			drop(e, dbObj)
			*orphaned = append(*orphaned, dbObj)
		}
	}
}

func isSubset(sub, super map[int64]struct{}) bool {
	for id := range sub {
		if _, ok := super[id]; !ok {
			return false
		}
	}
	return true
}
