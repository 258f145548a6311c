package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillwater/lodge/internal/apperr"
)

const testKeyID = "lodge-test-key"

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": kid,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	data, _ := json.Marshal(jwks)
	return data
}

func signToken(t *testing.T, key *rsa.PrivateKey, c jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	tok.Header["kid"] = testKeyID
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func newTestVerifier(t *testing.T, key *rsa.PrivateKey) *JWKSVerifier {
	t.Helper()
	k, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	require.NoError(t, err)
	return NewVerifierWithKeyfunc(k, "https://id.stillwaterlodge.com", "lodge-admin")
}

func TestVerifyCredentials(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token := signToken(t, key, jwt.MapClaims{
		"sub":   "staff-42",
		"email": "front-desk@stillwaterlodge.com",
		"name":  "Front Desk",
		"iss":   "https://id.stillwaterlodge.com",
		"aud":   "lodge-admin",
		"exp":   exp.Unix(),
	})

	s, err := v.VerifyCredentials(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "staff-42", s.Subject)
	assert.Equal(t, "front-desk@stillwaterlodge.com", s.Email)
	assert.Equal(t, "Front Desk", s.Name)
	assert.True(t, exp.Equal(s.ExpiresAt))
}

func TestVerifyCredentials_Rejects(t *testing.T) {
	key := generateTestKey(t)
	other := generateTestKey(t)
	v := newTestVerifier(t, key)
	valid := jwt.MapClaims{
		"sub": "staff-42",
		"iss": "https://id.stillwaterlodge.com",
		"aud": "lodge-admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	with := func(k string, val any) jwt.MapClaims {
		c := jwt.MapClaims{}
		for kk, vv := range valid {
			c[kk] = vv
		}
		if val == nil {
			delete(c, k)
		} else {
			c[k] = val
		}
		return c
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", signToken(t, key, with("exp", time.Now().Add(-time.Hour).Unix()))},
		{"no expiry", signToken(t, key, with("exp", nil))},
		{"wrong issuer", signToken(t, key, with("iss", "https://evil.example.com"))},
		{"wrong audience", signToken(t, key, with("aud", "someone-else"))},
		{"no subject", signToken(t, key, with("sub", nil))},
		{"unknown signer", signToken(t, other, valid)},
		{"unsigned", func() string {
			s, _ := jwt.NewWithClaims(jwt.SigningMethodNone, valid).SignedString(jwt.UnsafeAllowNoneSignatureType)
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyCredentials(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindAuth))
		})
	}
}

func TestCurrentSession(t *testing.T) {
	_, ok := CurrentSession(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), &Session{Subject: "staff-1"})
	s, ok := CurrentSession(ctx)
	require.True(t, ok)
	assert.Equal(t, "staff-1", s.Subject)
}
