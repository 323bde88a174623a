package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stampwatch configuration",
		Long: `Commands for managing stampwatch configuration.

The config file is stored at: ~/.config/stampwatch/config.toml

Examples:
  stampwatch config init              # Create default config file
  stampwatch config show              # Display current configuration
  stampwatch config path              # Show config file path
  stampwatch config token             # Generate an API token`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigTokenCmd())

	return cmd
}

// configFilePath is --config or the default location.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}
			if fileExists(path) && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Created config file: %s\n", ui.Success("✓"), path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Set detection.date_format to the order your files usually use")
			fmt.Fprintln(out, "  2. Add folders to watch.directories for the daemon")
			fmt.Fprintln(out, "  3. Run 'stampwatch config show' to review settings")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, _ := configFilePath()
			if !fileExists(path) {
				path += " (not created, showing defaults)"
			}

			if jsonOut {
				shown := *cfg
				shown.Server.APIToken = maskToken(cfg.Server.APIToken)
				return printJSON(cmd.OutOrStdout(), shown)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", path)

			fmt.Fprintln(out, "=== Detection ===")
			fmt.Fprintf(out, "Date format:      %s\n", formatConvention(cfg.DateConvention()))
			fmt.Fprintf(out, "Auto-resolve at:  %.0f%%\n", cfg.Detection.AutoResolveThreshold*100)
			fmt.Fprintf(out, "Workers:          %d\n", cfg.Detection.Workers)
			fmt.Fprintf(out, "Cache:            %v\n", cfg.Detection.CacheEnabled)

			fmt.Fprintln(out, "\n=== Rename ===")
			fmt.Fprintf(out, "Template:         %s\n", cfg.Rename.Template)
			fmt.Fprintf(out, "Keep original:    %v\n", cfg.Rename.KeepOriginal)

			fmt.Fprintln(out, "\n=== Watch ===")
			fmt.Fprintf(out, "Directories:      %v\n", cfg.Watch.Directories)
			fmt.Fprintf(out, "Recursive:        %v\n", cfg.Watch.Recursive)
			fmt.Fprintf(out, "Scan interval:    %s\n", cfg.Watch.ScanInterval)

			fmt.Fprintln(out, "\n=== Server ===")
			fmt.Fprintf(out, "Address:          %s\n", cfg.Server.Addr)
			fmt.Fprintf(out, "Allowed origins:  %v\n", cfg.Server.AllowedOrigins)
			fmt.Fprintf(out, "API token:        %s\n", maskToken(cfg.Server.APIToken))

			dbPath, _ := cfg.DatabasePath()
			fmt.Fprintln(out, "\n=== Storage ===")
			fmt.Fprintf(out, "Database:         %s\n", dbPath)
			fmt.Fprintf(out, "Log level:        %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Generate a new API token and save it to the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			token, err := cfg.RotateAPIToken()
			if err != nil {
				return err
			}

			path, err := configFilePath()
			if err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
