package jwt_test

import (
	"rms/config"
	"rms/infras/jwt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret, issuer string) jwt.JWT {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.JWT.Issuer = issuer

	return jwt.New(cfg)
}

func TestJWT_IssueAndValidate(t *testing.T) {
	svc := newService("secret", "rms")

	token, err := svc.Issue("staff-1", "org-1", "host", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Equal(t, "host", claims.Role)
}

func TestJWT_ValidateToken(t *testing.T) {
	svc := newService("secret", "rms")

	expired, err := svc.Issue("staff-1", "org-1", "host", -time.Minute)
	require.NoError(t, err)

	foreign, err := newService("other", "rms").Issue("staff-1", "org-1", "host", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := newService("secret", "elsewhere").Issue("staff-1", "org-1", "host", time.Hour)
	require.NoError(t, err)

	noOrg, err := svc.Issue("staff-1", "", "host", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "expired", token: expired, want: jwt.ErrExpiredToken},
		{name: "wrong secret", token: foreign, want: jwt.ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, want: jwt.ErrInvalidToken},
		{name: "garbage", token: "not-a-token", want: jwt.ErrInvalidToken},
		{name: "missing organization", token: noOrg, want: jwt.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = jwt.ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = jwt.ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)

	_, err = jwt.ExtractTokenFromHeader("Bearer   ")
	assert.Error(t, err)
}
