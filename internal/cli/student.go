package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var user, pass, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new student account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
				"email":    email,
			}
			var result StudentResult

			if err := client.Post(cmd.Context(), "/register", req, &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the student for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result StudentResult

			if err := client.Post(cmd.Context(), "/login", req, &result); err != nil {
				return err
			}
			if result.Student == nil {
				return fmt.Errorf("login response carried no student")
			}

			if err := cfg.SaveStudent(result.Student.ID); err != nil {
				return fmt.Errorf("failed to save student: %w", err)
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
