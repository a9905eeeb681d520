package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWT(t *testing.T) {
	jwtService := NewJWTService("secret")

	tests := []struct {
		name           string
		userID         int64
		role           string
		expirationTime time.Time
	}{
		{
			name:           "Valid Token",
			userID:         123,
			role:           RoleBuyer,
			expirationTime: time.Now().Add(time.Hour),
		},
		{
			name:           "Expired Token",
			userID:         123,
			role:           RoleMerchant,
			expirationTime: time.Now().Add(-time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtService.GenerateJWT(tt.userID, tt.role, tt.expirationTime)
			assert.NoError(t, err)
			assert.NotEmpty(t, token)
		})
	}
}

func TestValidateToken(t *testing.T) {
	jwtService := NewJWTService("secret")

	tests := []struct {
		name        string
		setup       func() string
		expectError bool
		wantID      int64
		wantRole    string
	}{
		{
			name: "Valid Token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(7, RoleAdmin, time.Now().Add(time.Hour))
				return token
			},
			wantID:   7,
			wantRole: RoleAdmin,
		},
		{
			name: "Expired Token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(7, RoleBuyer, time.Now().Add(-time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Signed with another secret",
			setup: func() string {
				token, _ := NewJWTService("other").GenerateJWT(7, RoleBuyer, time.Now().Add(time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Unknown role",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(7, "root", time.Now().Add(time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Wrong issuer",
			setup: func() string {
				claims := Claims{UserID: 7, Role: RoleBuyer, StandardClaims: jwt.StandardClaims{
					ExpiresAt: time.Now().Add(time.Hour).Unix(),
					Issuer:    "someone-else",
				}}
				token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
				return token
			},
			expectError: true,
		},
		{
			name:        "Garbage",
			setup:       func() string { return "not-a-token" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := jwtService.ValidateToken(tt.setup())
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, claims.UserID)
			assert.Equal(t, tt.wantRole, claims.Role)
		})
	}
}
