package identity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{24}$`)

func TestProductionIDIsStable(t *testing.T) {
	a := DeriveID("203.0.113.7", "pepper", "sea", true)
	b := DeriveID("203.0.113.7", "pepper", "sea", true)
	assert.Equal(t, a, b, "one address must map to one identity")
	assert.Regexp(t, hexID, a)
}

func TestProductionIDDiffersPerAddress(t *testing.T) {
	a := DeriveID("203.0.113.7", "pepper", "sea", true)
	b := DeriveID("203.0.113.8", "pepper", "sea", true)
	assert.NotEqual(t, a, b)
}

func TestSaltsChangeTheIdentity(t *testing.T) {
	base := DeriveID("203.0.113.7", "pepper", "sea", true)
	assert.NotEqual(t, base, DeriveID("203.0.113.7", "other", "sea", true))
	assert.NotEqual(t, base, DeriveID("203.0.113.7", "pepper", "other", true))
}

func TestEmptySaltsStillDerive(t *testing.T) {
	a := DeriveID("203.0.113.7", "", "", true)
	b := DeriveID("203.0.113.7", "", "", true)
	assert.Equal(t, a, b)
	assert.Regexp(t, hexID, a)
}

func TestDevelopmentIDIsRandom(t *testing.T) {
	a := DeriveID("203.0.113.7", "pepper", "sea", false)
	b := DeriveID("203.0.113.7", "pepper", "sea", false)
	assert.NotEqual(t, a, b, "dev connections get fresh identities")
	assert.Regexp(t, hexID, a)
	assert.Regexp(t, hexID, b)
}
