// Package entities defines the booking-domain entity tree that ingest and
// reconciliation operate on.
//
// A Person owns Bookings; a Booking owns Charges, Holds, and an optional
// Arrest; each Charge optionally owns one Bond and one Sentence. Every entity
// carries an optional ExternalID assigned by the source jurisdiction and an
// internal primary key (ID) that is zero until reconciliation matches the
// entity to a stored row. Status enums include the terminal dropped states
// used to mark orphaned database entities without deleting them.
//
// Treat this package as the single source of truth for entity shape; matching
// and storage both depend on the field set defined here.
package entities
