// Package conv provides checked integer conversions.
//
// Arena block headers store offsets and sizes as uint32, and persisted records
// carry fixed-width fields. These helpers validate values crossing those
// boundaries instead of silently truncating them.
//
// For conversions that are provably safe by construction (loop indices,
// values already validated against an arena size), use direct casts.
package conv
