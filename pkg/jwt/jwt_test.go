package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/pkg/jwt"
)

func TestGenerateAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := jwt.New("access-secret", time.Hour)
	require.NoError(t, err)

	token, err := signer.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestNewMissingSecret(t *testing.T) {
	t.Parallel()

	_, err := jwt.New("", time.Hour)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	signer, err := jwt.New("secret", -time.Minute)
	require.NoError(t, err)

	token, err := signer.Generate("user-123")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := jwt.New("right-secret", time.Hour)
	require.NoError(t, err)
	verifier, err := jwt.New("wrong-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Generate("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	signer, err := jwt.New("secret", time.Hour)
	require.NoError(t, err)

	_, err = signer.Verify("not.a.jwt")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestSeparateTokenClasses(t *testing.T) {
	t.Parallel()

	access, err := jwt.New("access-secret", 15*time.Minute)
	require.NoError(t, err)
	refresh, err := jwt.New("refresh-secret", 240*time.Hour)
	require.NoError(t, err)

	token, err := access.Generate("user-123")
	require.NoError(t, err)

	// A token from one class never verifies against the other class's secret.
	_, err = refresh.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
