package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postplanner/internal/common"
)

func TestRootRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["token"])
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("PLANNER_CONFIG", "")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "planner-cli")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", "u-1", "--team", "t-1", "--ttl", "1h"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	claims, err := common.NewJWTManager("cli-secret", "planner-cli").ValidToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "t-1", claims.TeamID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	t.Setenv("PLANNER_CONFIG", "")
	t.Setenv("JWT_SECRET", "")

	rootCmd.SetArgs([]string{"token", "--user", "u-1", "--team", "t-1"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
