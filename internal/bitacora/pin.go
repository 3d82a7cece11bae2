package bitacora

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	PinMinLength = 4
	PinMaxLength = 8
)

// ErrPinFormat is returned for a closure PIN that is not 4 to 8 digits
var ErrPinFormat = errors.New("el PIN debe tener entre 4 y 8 dígitos")

// PinHashCost is the bcrypt cost used for closure PINs. Tests lower it.
var PinHashCost = bcrypt.DefaultCost

// ValidatePin checks that pin has only ASCII digits and an allowed length
func ValidatePin(pin string) error {
	if len(pin) < PinMinLength || len(pin) > PinMaxLength {
		return ErrPinFormat
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrPinFormat
		}
	}
	return nil
}

// HashPin validates and hashes a PIN. The raw value is never persisted.
func HashPin(pin string) (string, error) {
	if err := ValidatePin(pin); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), PinHashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPin compares a candidate PIN against a stored hash
func VerifyPin(hash, pin string) bool {
	if hash == "" || pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
