package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Voice-SDR/agent/knowledge"
	configx "github.com/tanpawarit/Chative-Voice-SDR/pkg/config"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the knowledge base",
}

var kbForce bool

var kbInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default FAQ knowledge base",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := kbPath(args)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !kbForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := knowledge.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(knowledge.DefaultFAQ), path)
		return nil
	},
}

var kbShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Validate the knowledge base and print it as the agent sees it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := kbPath(args)
		if err != nil {
			return err
		}
		base, err := knowledge.LoadOrInit(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), base.Render())
		return nil
	},
}

func kbPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := configx.New[AppConfig]("SDR")
	if err != nil {
		return "", fmt.Errorf("load app config: %w", err)
	}
	return cfg.KnowledgeBasePath, nil
}

func init() {
	kbInitCmd.Flags().BoolVar(&kbForce, "force", false, "overwrite an existing file")
	kbCmd.AddCommand(kbInitCmd)
	kbCmd.AddCommand(kbShowCmd)
}
