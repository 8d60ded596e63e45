// Package cluster implements the two hotspot engines.
//
// Detect is density-based clustering (DBSCAN): arbitrary-shape dense regions
// with sparse points rejected as noise. Partition is seeded k-means (k-means++
// initialisation followed by Lloyd iterations) producing coarse predicted
// hotspot centers that cover every point regardless of density.
//
// Both engines treat (latitude, longitude) as a plane and use Euclidean distance
// on degree values. Both are deterministic: identical inputs and parameters
// always give identical outputs.
package cluster
