package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Passcodes are short shared secrets a coordinator hands out so a member can
// bind a device to their roster entry. They are optional; a member without a
// stored hash binds with no passcode at all.

const minPasscodeLength = 4

var ErrPasscodeTooShort = fmt.Errorf("passcode must be at least %d characters", minPasscodeLength)

func HashPasscode(passcode string) (string, error) {
	if len(passcode) < minPasscodeLength {
		return "", ErrPasscodeTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passcode: %w", err)
	}
	return string(hash), nil
}

// VerifyPasscode reports whether the passcode matches the stored hash. An
// empty hash means the member never set one and any passcode is accepted.
func VerifyPasscode(hash, passcode string) bool {
	if hash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)) == nil
}
