// Package mockstore is the local stand-in for the authentication backend.
// It keeps a user table and a token-to-user table in a storage.Backend
// and answers login, registration, lookup and password-reset requests
// from them.
//
// Credentials are checked through a CredentialVerifier. The demo default is
// password.Plaintext; argon2 is available for anything that outlives a demo.
//
// Every operation re-reads its table from the backend and writes it back,
// serialized by a store-wide mutex. Tokens are opaque random strings bound
// to exactly one user; deleting a user removes its tokens.
package mockstore
