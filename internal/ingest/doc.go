// Package ingest runs one-shot reconciliation batches: it decodes scraped
// record files, matches the graphs against the store, and commits the
// results. It also loads incarceration-period files and produces the
// recidivism report over stored periods.
package ingest
