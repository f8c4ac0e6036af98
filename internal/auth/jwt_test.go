package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkazlou/flint/internal/auth"
)

func TestGenerateAndVerify(t *testing.T) {
	mgr := auth.NewJWTManager("test-secret", time.Hour)

	token, err := mgr.Generate(42)
	require.NoError(t, err)

	userID, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewJWTManager("secret-a", time.Hour).Generate(42)
	require.NoError(t, err)

	_, err = auth.NewJWTManager("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	mgr := auth.NewJWTManager("test-secret", -time.Minute)

	token, err := mgr.Generate(42)
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := auth.ExtractTokenFromHeader(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	r.Header.Set("Authorization", "abc.def.ghi")
	_, err = auth.ExtractTokenFromHeader(r)
	assert.Error(t, err)
}
