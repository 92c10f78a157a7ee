package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInAndOut(t *testing.T) {
	s := New(nil)

	_, ok := s.CurrentIdentity()
	assert.False(t, ok, "fresh session must be unauthenticated")

	require.NoError(t, s.SignIn(Credential{UserID: "u1"}))
	id, ok := s.CurrentIdentity()
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	s.SignOut()
	id, ok = s.CurrentIdentity()
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestSignInInvalidCredential(t *testing.T) {
	s := New(nil)

	err := s.SignIn(Credential{UserID: "   "})
	require.ErrorIs(t, err, ErrInvalidCredential)

	// Failure leaves the session unauthenticated.
	_, ok := s.CurrentIdentity()
	assert.False(t, ok)
}

func TestSignUp(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.SignUp(Credential{UserID: "new-user"}))
	id, ok := s.CurrentIdentity()
	assert.True(t, ok)
	assert.Equal(t, "new-user", id)
}

func TestConcurrentReads(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.SignIn(Credential{UserID: "u1"}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if id, ok := s.CurrentIdentity(); ok && id != "u1" && id != "u2" {
					t.Errorf("unexpected identity %q", id)
					return
				}
			}
		}()
	}
	require.NoError(t, s.SignIn(Credential{UserID: "u2"}))
	wg.Wait()

	id, ok := s.CurrentIdentity()
	assert.True(t, ok)
	assert.Equal(t, "u2", id)
}
