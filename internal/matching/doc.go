// Package matching reconciles ingested person graphs against entities already
// stored for the same region.
//
// The Engine assigns database primary keys to ingested entities whose stored
// counterpart can be identified, surfaces ambiguous identities as structured
// errors, and marks stored entities with no ingested counterpart as dropped
// instead of deleting them. Person, booking, and hold matching enforce a
// strict one-to-one constraint; charge, bond, and sentence matching use
// greedy first-available assignment ordered to minimize churn in bond and
// sentence links.
//
// A failure while matching one person never aborts the batch: the error is
// logged and counted, the person's keys are cleared so it persists as a new
// person, and matching continues with the next ingested person.
package matching
