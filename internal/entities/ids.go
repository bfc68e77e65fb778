package entities

import (
	"strings"

	"github.com/google/uuid"
)

// generatedIDSuffix marks identifiers minted locally rather than read from a
// source system, so they can be recognized and discarded before persistence.
const generatedIDSuffix = "_GENERATE"

// NewGeneratedID returns a temporary identifier for an entity that arrived
// without one. Bond and sentence matching needs every instance addressable by
// id even when the source omitted it.
func NewGeneratedID() string {
	return uuid.NewString() + generatedIDSuffix
}

// IsGeneratedID reports whether id was minted by NewGeneratedID.
func IsGeneratedID(id string) bool {
	return strings.HasSuffix(id, generatedIDSuffix)
}
