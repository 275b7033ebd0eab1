package util

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// CryptoRandomString generates a random hex string
func CryptoRandomString(length int) (string, error) {
	bytes, err := CryptoRandomBytes(int64((length + 1) / 2))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{}<>?"
)

// GeneratePassword returns a random password of the given length that
// always satisfies the password policy: one character from each class is
// placed first, the rest is drawn from the full alphabet, and the result is
// shuffled. Minimum length is 8.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	all := lowerChars + upperChars + digitChars + symbolChars
	buf := make([]byte, length)

	classes := []string{lowerChars, upperChars, digitChars, symbolChars}
	for i, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}
	for i := len(classes); i < length; i++ {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	// Fisher-Yates so the guaranteed class characters are not positional.
	for i := length - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func randomChar(alphabet string) (byte, error) {
	i, err := randomInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
