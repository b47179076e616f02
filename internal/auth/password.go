package auth

import "golang.org/x/crypto/bcrypt"

// DefaultStaffPassword is handed to every invited staff user. Invited users are
// flagged must_reset_password but nothing enforces the reset yet.
const DefaultStaffPassword = "changeme123"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash. A
// malformed hash counts as a mismatch.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
