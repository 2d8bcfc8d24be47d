package auth

import (
	"crypto/subtle"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost for every hash written by this package.
const PasswordCost = 10

var bcryptPrefix = regexp.MustCompile(`^\$2[aby]\$`)

// IsStrongHash reports whether stored is a bcrypt hash rather than a legacy plaintext value.
func IsStrongHash(stored string) bool {
	return bcryptPrefix.MatchString(stored)
}

// VerifyPassword checks plain against the stored credential. Accounts still holding a
// legacy plaintext value are compared directly.
func VerifyPassword(plain, stored string) bool {
	if stored == "" {
		return false
	}
	if IsStrongHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(stored)) == 1
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// NeedsUpgrade reports whether stored is a legacy plaintext credential that plain
// has just matched, and should therefore be rewritten as a hash.
func NeedsUpgrade(plain, stored string) bool {
	if stored == "" || IsStrongHash(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(stored)) == 1
}
