// Package authcore provides the authentication and account-lifecycle engine
// for the Taskora business-management backend: credential storage and
// verification, JWT access/refresh token issuance, single-use
// email-verification and password-reset token flows, and failed-login lockout
// accounting.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the [Account] data model, and the [AccountStore] and [Mailer] collaborator
// interfaces. The HTTP layer, mail transport, and all non-auth business
// entities live outside this module and interact with it only through
// [Engine] and the middleware package.
//
// # What this package must NOT do
//
//   - Expose Redis clients or store encoding details in its public API
//     (store/redisstore is one pluggable [AccountStore], not the contract).
//   - Return plaintext secrets, secret hashes, or unconsumed tokens from any
//     Engine method.
//   - Import any sub-package that re-imports authcore (no import cycles).
//
// # Concurrency contract
//
// Every multi-step Account mutation (failed-login accounting, single-use
// token consumption) is delegated to the [AccountStore] as one atomic
// operation. The Engine never read-modify-writes Account state in process
// memory, so concurrent requests against the same account cannot lose
// updates.
package authcore
