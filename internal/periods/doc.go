// Package periods models state incarceration periods and prepares them for
// release-event classification.
//
// The Normalizer validates required fields, orders periods by admission date,
// and collapses chains connected by facility transfers so a transfer does not
// surface as a spurious release and re-admission. Collapsing builds new merged
// values rather than mutating the caller's slice, so period lists can be
// shared with other components safely.
//
// Malformed input is a defect in the upstream extraction layer; Validate
// fails the whole list rather than skipping bad records.
package periods
