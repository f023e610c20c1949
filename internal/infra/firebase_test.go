package infra

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIDTokens struct {
	token *auth.Token
	err   error
}

func (s stubIDTokens) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.err
}

func TestFirebaseCallers_VerifyCaller(t *testing.T) {
	expired := errors.New("ID token has expired")

	tests := []struct {
		name    string
		tokens  stubIDTokens
		wantUID string
		wantErr error
	}{
		{"signed-in user", stubIDTokens{token: &auth.Token{UID: "u1"}}, "firebase:u1", nil},
		{"token without uid", stubIDTokens{token: &auth.Token{}}, "", ErrNoSubject},
		{"verification failure", stubIDTokens{err: expired}, "", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FirebaseCallers{tokens: tt.tokens}
			uid, err := f.VerifyCaller(context.Background(), "tok")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, uid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, uid)
		})
	}
}

func TestNewFirebaseCallers_RequiresProject(t *testing.T) {
	_, err := NewFirebaseCallers(context.Background(), "", "")
	require.Error(t, err)
}
