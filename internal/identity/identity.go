// Package identity derives the public client identity from a connection's
// remote address.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"
)

// idBytes is the digest length before hex encoding; ids are twice this many
// characters on the wire.
const idBytes = 12

// DeriveID computes the identity for a remote address. In production the id
// is a salted digest of the address, so connections from one address share an
// identity and survive reconnects. Outside production every connection gets a
// fresh random id, which keeps local clients distinct behind one address.
func DeriveID(remoteAddr, salt1, salt2 string, production bool) string {
	if !production {
		return randomID()
	}

	reader := hkdf.New(sha256.New, []byte(remoteAddr), []byte(salt1), []byte(salt2))
	buf := make([]byte, idBytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return randomID()
	}
	return hex.EncodeToString(buf)
}

func randomID() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("identity: system randomness unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
