// Package ir holds the canonical representation of zone specifications.
//
// Specs written in CUE are compiled into ZoneSpec values; the harness and
// the store refer to them by SpecHash. Everything that feeds a hash goes
// through MarshalCanonical, so the same spec always produces the same
// bytes regardless of map order or Unicode normalisation form.
//
// This package imports nothing internal. Key constraints:
//   - no float types; numbers are int64
//   - JSON tags use snake_case
//   - strings are NFC-normalised at serialisation time
package ir
