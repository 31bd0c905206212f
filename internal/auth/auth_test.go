package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignupIssuesToken(t *testing.T) {
	s := New(secret)

	sess, err := s.Signup("User@Example.com", "hunter22", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, sess.UserID)

	parsed, err := jwt.Parse(sess.Token, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, sub)
}

func TestSignupValidation(t *testing.T) {
	s := New(secret)

	tt := []struct {
		desc                     string
		email, password, confirm string
		want                     error
	}{
		{"missing at", "not-an-email", "hunter22", "hunter22", ErrInvalidEmail},
		{"no domain dot", "a@b", "hunter22", "hunter22", ErrInvalidEmail},
		{"short password", "a@b.com", "12345", "12345", ErrWeakPassword},
		{"mismatch", "a@b.com", "hunter22", "hunter23", ErrPasswordMismatch},
	}

	for _, ts := range tt {
		_, err := s.Signup(ts.email, ts.password, ts.confirm)
		assert.ErrorIs(t, err, ts.want, ts.desc)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	s := New(secret)

	_, err := s.Signup("a@b.com", "hunter22", "hunter22")
	require.NoError(t, err)

	_, err = s.Signup("A@B.COM", "hunter22", "hunter22")
	assert.ErrorIs(t, err, ErrEmailTaken, "emails are case-insensitive")
}

func TestLogin(t *testing.T) {
	s := New(secret)

	created, err := s.Signup("a@b.com", "hunter22", "hunter22")
	require.NoError(t, err)

	sess, err := s.Login("a@b.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, sess.UserID)

	_, err = s.Login("a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login("nobody@b.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
