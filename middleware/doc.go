// Package middleware exposes HTTP middleware adapters that enforce bearer
// authentication and role checks on top of authcore.Engine.
//
// # Guards
//
//   - [Guard] — reads the Authorization header, calls Engine.Authenticate,
//     and injects the result into the request context.
//   - [RequireRole] — allow-list check on the authenticated role; mount it
//     after Guard.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the account store (the Engine handles I/O).
//   - Make authorization decisions beyond pass/reject and the role
//     allow-list.
package middleware
