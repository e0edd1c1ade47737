// Package password provides the credential verifiers the mock user store
// can run with.
//
// # Output format
//
// Argon2 hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters than
// the current configuration so the store can re-hash on the next successful
// login.
//
// [Plaintext] stores passwords as given. It exists for the demo fallback
// store and must not be used anywhere credentials matter.
//
// # What this package must NOT do
//
//   - Enforce password policy. Length and character-class rules are form
//     validation rules.
//   - Log passwords or hashes.
package password
