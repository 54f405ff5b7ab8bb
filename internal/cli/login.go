package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"hrintake/internal/auth"
	"hrintake/internal/common"
	"hrintake/internal/types"
)

var (
	loginOutput   outputFlags
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a dashboard token with the admin credentials",
	Long: `Check the admin credentials and print a signed dashboard token. Pass it to
the dashboard commands with --token or HRINTAKE_ADMIN_TOKEN.

The password may also be given in HRINTAKE_LOGIN_PASSWORD. Tokens are only
accepted across runs when admin.jwtSecret is configured.`,
	RunE: runLogin,
}

func init() {
	loginOutput.register(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Admin username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Admin password")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	cmdConfig, err := loginOutput.resolve(cmd)
	if err != nil {
		return err
	}

	gate, err := auth.NewGate(cfg.Admin, logger)
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		password = os.Getenv("HRINTAKE_LOGIN_PASSWORD")
	}

	return common.RunCommand(cmd.Context(), logger, cmdConfig, func(context.Context) (types.LoginResponse, error) {
		resp, err := gate.Login(loginUsername, password)
		if err != nil {
			return types.LoginResponse{}, err
		}
		logger.Info("Admin logged in", "username", loginUsername, "expires_at", resp.ExpiresAt)
		return resp, nil
	})
}
