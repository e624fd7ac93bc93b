// Package password provides the adaptive one-way secret hasher used by the
// authcore engine.
//
// The implementation is bcrypt with a configurable work factor. Brute-forcing
// leaked hashes is deliberately expensive, and where the mismatch occurs in
// the input never changes verification time.
package password
