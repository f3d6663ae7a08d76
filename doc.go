// Package auth implements the account and session backend: credential
// management, session token issuance, Firebase ID token validation, and a
// write-back activity cache that coalesces high-frequency activity signals
// into few persistence writes.
//
// Credentials:
//   - Accounts carry an optional bcrypt password hash and/or a Firebase UID.
//     CreateWithEmailAndPassword enforces the complexity policy; VerifyPassword
//     compares in constant time via bcrypt and never inspects raw hashes.
//
// Tokens:
//   - TokenService signs HS256 JWTs binding an account id, with a default
//     expiration for sessions and a per-call TTL for single purpose tokens
//     such as email verification links.
//   - provider/firebase validates RS256 ID tokens against the provider's
//     published certificates, pinning the algorithm before any network call.
//
// Session activity:
//   - SessionCache buffers last-activity timestamps in memory. The first touch
//     for an id is persisted immediately so a crash never loses the session
//     marker; later touches only overwrite the cached value.
//   - SessionCoordinator consumes activity and login events from a Dispatcher
//     and runs the periodic sweep that persists and evicts stale entries.
package auth
