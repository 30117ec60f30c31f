package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "CLI tool for the course roster API",
		Long: `rosterctl talks to the course roster JSON API.

It can register and log in students, browse the course catalog and
manage a student's enrollments. After login the student id is remembered
so enroll, drop and enrollments can omit --student.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != "text" && cfg.Output != "json" {
				return fmt.Errorf("invalid --output %q: must be text or json", cfg.Output)
			}
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ROSTER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StudentFile, "student-file", cfg.StudentFile, "File remembering the logged-in student (env: ROSTER_STUDENT_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newCoursesCmd())
	rootCmd.AddCommand(newTestimonialsCmd())
	rootCmd.AddCommand(newEnrollmentsCmd())
	rootCmd.AddCommand(newEnrollCmd())
	rootCmd.AddCommand(newDropCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
