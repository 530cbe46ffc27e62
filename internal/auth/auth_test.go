package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStaticTokenVerifier(t *testing.T) {
	v := NewStaticTokenVerifier("s3cret")
	ctx := context.Background()

	p, err := v.Verify(ctx, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "static", p.Method)

	_, err = v.Verify(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = NewStaticTokenVerifier("").Verify(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCredential, "empty secret must never match")
}

func TestHashedTokenVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	v := NewHashedTokenVerifier(string(hash))

	_, err = v.Verify(context.Background(), "hunter2")
	assert.NoError(t, err)
	_, err = v.Verify(context.Background(), "hunter3")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestJWTRoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("key", time.Hour)
	token, exp, err := issuer.Issue("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	p, err := NewJWTVerifier("key").Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Subject)
	assert.Equal(t, "jwt", p.Method)

	_, err = NewJWTVerifier("other").Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestJWTExpired(t *testing.T) {
	issuer := NewJWTIssuer("key", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue("admin")
	require.NoError(t, err)

	_, err = NewJWTVerifier("key").Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestChain(t *testing.T) {
	issuer := NewJWTIssuer("key", time.Hour)
	token, _, err := issuer.Issue("admin")
	require.NoError(t, err)

	chain := Chain{NewStaticTokenVerifier("s3cret"), nil, NewJWTVerifier("key")}

	p, err := chain.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "jwt", p.Method)

	p, err = chain.Verify(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "static", p.Method)

	_, err = chain.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
