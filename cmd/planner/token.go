package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"postplanner/internal/common"
	"postplanner/internal/config"
)

var (
	tokenUser string
	tokenTeam string
	tokenTTL  time.Duration
)

// tokenCmd mints bearer tokens for local development; production tokens
// come from the auth provider sharing JWT_SECRET.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development bearer token",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (required)")
	tokenCmd.Flags().StringVar(&tokenTeam, "team", "", "team id (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	token, err := common.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer).GenerateToken(tokenUser, tokenTeam, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
