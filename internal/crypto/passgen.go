package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789-_.!@#%"

var passwordClasses = []string{
	"ABCDEFGHJKLMNPQRSTUVWXYZ",
	"abcdefghijkmnopqrstuvwxyz",
	"23456789",
	"-_.!@#%",
}

// MinGeneratedLength is the shortest password GeneratePassword produces.
const MinGeneratedLength = 12

var ErrPasswordTooShort = errors.New("generated password length must be at least 12")

// GeneratePassword returns a random password containing at least one
// character of every class. Look-alike characters are excluded.
func GeneratePassword(length int) (string, error) {
	if length < MinGeneratedLength {
		return "", ErrPasswordTooShort
	}

	out := make([]byte, length)
	for i, class := range passwordClasses {
		ch, err := randChar(class)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}
	for i := len(passwordClasses); i < length; i++ {
		ch, err := randChar(passwordAlphabet)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}

	// Fisher-Yates so the guaranteed characters are not always first.
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}

	return string(out), nil
}

func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
