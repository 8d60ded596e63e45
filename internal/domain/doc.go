// Package domain models geotagged incident events and the analytic values derived from them.
//
// # Input Rows
//
// Sources hand the core flat tabular rows ([RawRow]) with the columns
//
//	date, latitude, longitude, group, region[, note]
//
// Every value arrives as text. [ParseRow] is the only place a row is typed: it
// either returns a fully valid [Event] or one of the validation errors
// ([ErrMissingField], [ErrOutOfRange], [ErrBadValue]). Invalid rows are dropped
// at load time and never reach filtering or clustering.
//
// Date formats (first match wins, all interpreted as UTC when no offset is given):
//
//	RFC3339 / RFC3339Nano   2024-04-26T15:10:00Z
//	date-time               2024-04-26 15:10:00
//	date only               2024-04-26
//
// # Coordinates
//
// Latitude and longitude are WGS-84 degrees and must satisfy -90 ≤ lat ≤ 90 and
// -180 ≤ lon ≤ 180. Both clustering engines measure distance as plain Euclidean
// distance on raw degree values. That is a planar approximation which is only
// reasonable for regional datasets; it is deliberate and kept stable so results
// stay comparable across runs. The one geodesic value, [DensityCluster.RadiusKm],
// is display-only and never feeds back into clustering.
//
// # Tie Breaking
//
// Wherever a "dominant" label is chosen (group, region, a cluster's top group),
// ties go to the lexicographically smallest label. Peak month ties go to the
// lowest month number.
package domain
