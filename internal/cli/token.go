package cli

import (
	"fmt"

	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd, v)
			if err != nil {
				return err
			}
			subject, _ := cmd.Flags().GetString("subject")
			email, _ := cmd.Flags().GetString("email")
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}

			token, err := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).
				IssueToken(models.Identity{Subject: subject, Email: email})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("subject", "", "Identity subject (sub claim)")
	cmd.Flags().String("email", "", "Email claim")
	return cmd
}
