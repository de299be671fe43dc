package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// allows a later change of algorithm.
const (
	DomainSpec  = "zones/spec/v1"
	DomainTrace = "zones/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes the content-addressed identity of a zone spec. Two
// specs that differ only in map order or Unicode normalisation hash the
// same.
func SpecHash(spec *ZoneSpec) (string, error) {
	canonical, err := MarshalCanonical(spec.Value())
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// MustSpecHash is like SpecHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSpecHash(spec *ZoneSpec) string {
	h, err := SpecHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}

// SpecSetHash identifies a set of specs loaded together, e.g. every zone
// a harness scenario references. Order matters: callers pass specs in
// declaration order.
func SpecSetHash(specs []*ZoneSpec) (string, error) {
	arr := make(Array, len(specs))
	for i, spec := range specs {
		arr[i] = spec.Value()
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("SpecSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// TraceHash identifies a canonical trace document, e.g. the golden
// snapshot of a harness run.
func TraceHash(canonicalTrace []byte) string {
	return hashWithDomain(DomainTrace, canonicalTrace)
}
