package mockstore

// User is the public part of a user record.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is a sign-up request.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// record is the persisted form of a user. Password holds whatever the
// configured CredentialVerifier produced.
type record struct {
	User
	Password string `json:"password"`
}

// CredentialVerifier turns passwords into stored secrets and checks them.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(password, stored string) (bool, error)
}

// upgrader is implemented by verifiers that can tell when a stored secret
// should be re-hashed.
type upgrader interface {
	NeedsUpgrade(stored string) (bool, error)
}

// decoyPassword is hashed once per store to give unknown-email logins a
// stored secret to verify against.
const decoyPassword = "authdemo-decoy-credential"

// ResetPasswordMessage is returned by a successful ResetPassword.
const ResetPasswordMessage = "Password reset email has been sent to your email address"

// DefaultSeed is the test account created on first access.
var DefaultSeed = []Registration{
	{Name: "Test User", Email: "test@example.com", Password: "Password123"},
}
