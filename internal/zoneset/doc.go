// Package zoneset deduplicates zones.
//
// A Set records which zones have been seen, the way a reachability search
// keeps its passed list: zones are looked up by their 64-bit hash and
// confirmed with exact equality. The scenario harness uses it to count the
// distinct zones a run visits.
package zoneset
