package jwt_test

import (
	"testing"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/infra/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateAndValidate(t *testing.T) {
	m := jwt.NewJwtManager("admin-secret")

	token, err := m.CreateToken("operator", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
}

func TestManager_ValidateToken_Errors(t *testing.T) {
	m := jwt.NewJwtManager("admin-secret")
	other := jwt.NewJwtManager("other-secret")

	foreign, err := other.CreateToken("operator", time.Hour)
	require.NoError(t, err)
	expired, err := m.CreateToken("operator", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{"garbage", "not-a-token", jwt.ErrInvalidToken},
		{"wrong secret", foreign, jwt.ErrInvalidToken},
		{"expired", expired, jwt.ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
