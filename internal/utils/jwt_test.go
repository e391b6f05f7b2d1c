package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"baa_legal/internal/models"
	"baa_legal/internal/utils"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	user := models.NewUser("a@example.com", "x", "A", models.RoleLawyer)

	token, err := tokens.GenerateToken(user)
	require.NoError(t, err)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, models.RoleLawyer, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := utils.NewTokenManager("secret-a", time.Hour)
	verifier := utils.NewTokenManager("secret-b", time.Hour)
	user := models.NewUser("a@example.com", "x", "A", models.RoleClient)

	token, err := issuer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tokens := utils.NewTokenManager("secret", -time.Minute)
	user := models.NewUser("a@example.com", "x", "A", models.RoleClient)

	token, err := tokens.GenerateToken(user)
	require.NoError(t, err)

	_, err = tokens.ParseToken(token)
	require.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	_, err := tokens.ParseToken("not-a-token")
	require.Error(t, err)
}
