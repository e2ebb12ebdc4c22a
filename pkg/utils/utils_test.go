package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Weapons":            "weapons",
		"  Hunting Rifles  ": "hunting-rifles",
		"Bows & Arrows":      "bows-arrows",
		"--Night--Vision--":  "night-vision",
		"Ammo_Boxes 9mm":     "ammo-boxes-9mm",
		"Café Ünïcode":       "caf-ncode",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	id := primitive.NewObjectID()

	token, err := issuer.GenerateToken(id, "support")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.AdminID)
	assert.Equal(t, "support", claims.Role)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).GenerateToken(primitive.NewObjectID(), "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpires(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.GenerateToken(primitive.NewObjectID(), "admin")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = bcrypt.DefaultCost })

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "s3cret-pass"))
}
