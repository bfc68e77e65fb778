package matching

import (
	"errors"
	"fmt"
)

// ErrMatching is the marker wrapped by every error the engine surfaces while
// matching a single person. Callers can errors.Is against it without caring
// which structured kind occurred.
var ErrMatching = errors.New("entity matching error")

// MultipleDatabaseMatchesError reports an ingested entity that matched more
// than one stored entity, meaning identity in storage is ambiguous.
type MultipleDatabaseMatchesError struct {
	EntityKind string
	ExternalID string
	MatchedIDs []int64
}

func (e *MultipleDatabaseMatchesError) Error() string {
	return fmt.Sprintf("%s %q matched multiple database entities %v", e.EntityKind, e.ExternalID, e.MatchedIDs)
}

func (e *MultipleDatabaseMatchesError) Unwrap() error { return ErrMatching }

// MultipleIngestedMatchesError reports a stored entity claimed by more than
// one ingested entity in the same batch: two distinct incoming records
// collided on one identity.
type MultipleIngestedMatchesError struct {
	EntityKind string
	DatabaseID int64
}

func (e *MultipleIngestedMatchesError) Error() string {
	return fmt.Sprintf("%s with database id %d matched multiple ingested entities", e.EntityKind, e.DatabaseID)
}

func (e *MultipleIngestedMatchesError) Unwrap() error { return ErrMatching }
