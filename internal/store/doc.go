// Package store persists booked-person graphs and incarceration periods in
// SQLite and supplies the candidate queries entity matching runs against.
//
// The Store manages the database connection, schema initialization, and an
// advisory file lock so only one process reconciles against a database at a
// time. Person graphs are hydrated whole: a person row comes back with its
// bookings, and each booking with its arrest, holds, charges, and the bonds
// and sentences those charges share. Schema changes bump schemaVersion in
// schema.go; the database is rebuilt from source records rather than
// migrated.
package store
