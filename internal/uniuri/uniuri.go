package uniuri

import (
	"crypto/rand"
)

// Alphabet is the character set of NewLen.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewLen returns a random string of length characters from Alphabet.
func NewLen(length int) string {
	return NewLenChars(length, Alphabet)
}

// NewLenChars returns a random string of length characters from chars,
// which must hold between 2 and 256 characters.
func NewLenChars(length int, chars string) string {
	if length <= 0 {
		return ""
	}

	n := len(chars)
	if n < 2 || n > 256 { //nolint:mnd
		panic("uniuri: wrong charset length")
	}

	// bytes at or above limit would bias the modulo
	limit := 256 - 256%n //nolint:mnd

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
