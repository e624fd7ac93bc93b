// Package jwt wraps golang-jwt with the authcore token model: HS256-signed
// access and refresh tokens carrying {accountID, role, typ} claims.
//
// The two token kinds share one signing secret and differ only in TTL and
// the typ claim. Verification is stateless: signature plus expiry check.
// There is no revocation list; see the authcore package documentation for
// the accepted-limitation note.
package jwt
