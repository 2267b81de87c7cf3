package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manager = Identity{UserID: "u-1", StoreID: "store-9", Role: "manager"}

func TestGenerateParse(t *testing.T) {
	tok, err := Generate("s3cr3t", "retail-ledger", manager, 5*time.Minute)
	require.NoError(t, err)

	id, err := Parse("s3cr3t", "retail-ledger", tok)
	require.NoError(t, err)
	assert.Equal(t, manager, id)

	// sin issuer configurado no se verifica
	id, err = Parse("s3cr3t", "", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate("s3cr3t", "retail-ledger", manager, 5*time.Minute)
	require.NoError(t, err)

	_, err = Parse("otro", "retail-ledger", tok)
	assert.Error(t, err)

	_, err = Parse("s3cr3t", "otro-emisor", tok)
	assert.Error(t, err)

	expired, err := Generate("s3cr3t", "retail-ledger", manager, -time.Minute)
	require.NoError(t, err)
	_, err = Parse("s3cr3t", "retail-ledger", expired)
	assert.Error(t, err)

	anon, err := Generate("s3cr3t", "retail-ledger", Identity{Role: "staff"}, time.Minute)
	require.NoError(t, err)
	_, err = Parse("s3cr3t", "retail-ledger", anon)
	assert.Error(t, err)

	_, err = Generate("", "i", manager, time.Minute)
	assert.Error(t, err)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("s3cr3t"))
	require.NoError(t, err)
	_, err = Parse("s3cr3t", "", tok)
	assert.Error(t, err)
}
