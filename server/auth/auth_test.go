package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/raksha-app/raksha/server/auth/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T) *key.KeyPair {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.Nil(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(string(pemBytes))
	require.Nil(t, err)

	return keyPair
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	require.Nil(t, err)

	assert.NotEqual(t, "super-secret", hash)
	assert.True(t, CheckPasswordHash("super-secret", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
	assert.False(t, CheckPasswordHash("super-secret", ""))
}

func TestEncodeAndDecodeJWT(t *testing.T) {
	keyPair := testKeyPair(t)

	claims := RakshaTokenClaims{
		Name:        "Asha",
		PhoneNumber: "+919876543210",
		StandardClaims: jwt.StandardClaims{
			Subject:   "1",
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}

	tokenString, err := EncodeJWT(claims, keyPair)
	require.Nil(t, err)
	require.NotEmpty(t, tokenString)

	decoded, err := DecodeJWT(tokenString, keyPair)
	require.Nil(t, err)
	assert.Equal(t, "Asha", decoded.Name)
	assert.Equal(t, "+919876543210", decoded.PhoneNumber)
	assert.Equal(t, "1", decoded.Subject)
}

func TestDecodeJWTRejectsExpiredToken(t *testing.T) {
	keyPair := testKeyPair(t)

	claims := RakshaTokenClaims{
		PhoneNumber: "+919876543210",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}

	tokenString, err := EncodeJWT(claims, keyPair)
	require.Nil(t, err)

	_, err = DecodeJWT(tokenString, keyPair)
	assert.NotNil(t, err)
}

func TestDecodeJWTRejectsWrongKey(t *testing.T) {
	tokenString, err := EncodeJWT(RakshaTokenClaims{PhoneNumber: "+919876543210"}, testKeyPair(t))
	require.Nil(t, err)

	_, err = DecodeJWT(tokenString, testKeyPair(t))
	assert.NotNil(t, err)
}

func TestDecodeJWTRejectsGarbage(t *testing.T) {
	_, err := DecodeJWT("not-a-token", testKeyPair(t))
	assert.NotNil(t, err)
}
