// Package redisstore is the Redis-backed reference implementation of
// authcore.AccountStore.
//
// Accounts live in one hash per account plus three lookup indexes (email,
// verification token, reset token). Every multi-field mutation — account
// creation, token consumption, failed-login accounting — runs as a single
// Lua script, so the store upholds the atomicity contract the engine
// depends on: a single-use token is redeemed by at most one caller, and N
// concurrent failed logins advance the counter by exactly N with the lock
// set exactly once.
//
// # What this package must NOT do
//
//   - Hash secrets or mint tokens (the engine owns all crypto).
//   - Interpret account status beyond storing it.
//   - Return backend error details in place of the store error contract.
package redisstore
