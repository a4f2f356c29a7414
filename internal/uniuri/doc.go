// Package uniuri generates random strings from crypto/rand, used for API key
// ids and secrets.
package uniuri
