// Command docket reconciles scraped jail records into a regional entity
// database and reports recidivism rates over stored incarceration periods.
package main
