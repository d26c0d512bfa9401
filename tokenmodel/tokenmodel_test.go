package tokenmodel_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/tokenmodel"
	"github.com/stretchr/testify/require"
)

func TestTokenResponseWithoutRotation(t *testing.T) {
	var resp tokenmodel.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access":"A2"}`), &resp))
	require.Equal(t, "A2", resp.AccessToken())
	require.Empty(t, resp.RotatedRefresh())
}

func TestTokenResponseBlankValues(t *testing.T) {
	var resp tokenmodel.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access":"  ","refresh":""}`), &resp))
	require.Empty(t, resp.AccessToken())
	require.Empty(t, resp.RotatedRefresh())
}

func TestRefreshRequestShape(t *testing.T) {
	body, err := json.Marshal(tokenmodel.RefreshRequest{Refresh: "R1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"refresh":"R1"}`, string(body))
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, ok := tokenmodel.ExpiresAt(signed)
	require.True(t, ok)
	require.True(t, exp.Equal(got))
}

func TestExpiresAtOpaqueToken(t *testing.T) {
	_, ok := tokenmodel.ExpiresAt("A1")
	require.False(t, ok)

	_, ok = tokenmodel.ExpiresAt("")
	require.False(t, ok)
}
