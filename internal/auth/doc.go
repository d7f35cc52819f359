// Package auth issues and verifies the HS256 JWTs that identify users
// at the gateway, and checks bcrypt password hashes for bootstrap and
// token issuance.
package auth
