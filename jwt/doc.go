// Package jwt issues and verifies the bearer tokens of the demo backend.
//
// Tokens carry the user id in the "uid" claim and a random "jti". HS256
// and Ed25519 signing are supported; verification pins the configured
// algorithm, issuer and audience.
package jwt
