package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings [key] [value]",
	Short: "Show or change settings",
	Long: `Show or change settings stored in the config file.

With no arguments every key is listed with its resolved value.
With a key, only that value is printed. With a key and a value,
the value is stored.

Examples:
  livepreview settings
  livepreview settings viewer.scale
  livepreview settings serve.inline true`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	switch len(args) {
	case 0:
		for _, key := range settingsService.Keys() {
			value, err := settingsService.Value(key)
			if err != nil {
				return err
			}
			if value == "" {
				value = "(not set)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", key, value)
		}
		return nil

	case 1:
		value, err := settingsService.Value(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s set to %s\n", args[0], args[1])
	return nil
}
