// Package recidivism classifies incarceration-period boundaries into release
// events grouped by release-cohort year.
//
// Each normalized period either produces a RecidivismReleaseEvent (the person
// was readmitted later), a NonRecidivismReleaseEvent (released from the final
// period with no return on record), or nothing (still in custody, or released
// under circumstances that exclude the period from the cohort, such as death,
// escape, or an uncollapsed transfer). Anomalous release/readmission
// combinations are logged and conservatively excluded rather than treated as
// errors.
package recidivism
