package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/speech-coach/config"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfgPath string
	cfg     *config.Root
	log     *logrus.Logger
}

// NewRootCmd builds the coach command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "coach",
		Short:         "Speech coaching analysis pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// a missing .env is fine
			_ = godotenv.Load()

			cfg, err := config.Load(c.cfgPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = config.NewLogger(cfg.Pipeline.LogLvl, cfg.Pipeline.LogFormat)
			c.log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "", "path to config.yaml")

	root.AddCommand(c.serveCmd(), c.analyzeCmd(), c.configCmd())
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
