package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/paths"
)

var (
	version  = "dev"
	cfgFile  string
	addr     string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stampwatchd [directory...]",
		Short: "stampwatch daemon service",
		Long: `stampwatchd watches directories for new files, detects the timestamp in
each name using the folder's day/month order, queues files that need a
decision for review and serves the HTTP API.

Directories given as arguments replace watch.directories from the config.`,
		SilenceUsage: true,
		RunE:         runDaemon,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.Flags().StringVar(&addr, "addr", "", "API address (default from config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from config)")

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUninstallCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stampwatchd %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	a, err := app.Init(cfg, app.Options{LogLevel: logLevel})
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.NewDaemon(args, version)
	if err != nil {
		return err
	}

	a.Logger.Info("daemon", "Configuration loaded",
		logging.F("version", version),
		logging.F("date_format", string(cfg.DateConvention())),
		logging.F("threshold", cfg.Detection.AutoResolveThreshold),
		logging.F("addr", cfg.Server.Addr),
		logging.F("auth", cfg.Server.APIToken != ""))

	return d.Run(cmd.Context())
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install stampwatchd as a systemd service",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("To install stampwatchd as a systemd user service for %s:\n", paths.ActualUser())
			fmt.Println()
			fmt.Println("1. Copy the binary:")
			fmt.Println("   sudo cp stampwatchd /usr/local/bin/")
			fmt.Println()
			fmt.Println("2. Write ~/.config/systemd/user/stampwatchd.service:")
			fmt.Println()
			fmt.Print(serviceUnit)
			fmt.Println()
			fmt.Println("3. Enable and start:")
			fmt.Println("   systemctl --user daemon-reload")
			fmt.Println("   systemctl --user enable --now stampwatchd")
			fmt.Println()
			fmt.Println("4. Check status:")
			fmt.Println("   systemctl --user status stampwatchd")
			fmt.Println("   journalctl --user -u stampwatchd -f")
		},
	}
}

const serviceUnit = `   [Unit]
   Description=stampwatch filename timestamp watcher
   After=network.target

   [Service]
   ExecStart=/usr/local/bin/stampwatchd
   Restart=on-failure

   [Install]
   WantedBy=default.target
`

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall the stampwatchd systemd service",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("To uninstall stampwatchd:")
			fmt.Println()
			fmt.Println("1. Stop and disable:")
			fmt.Println("   systemctl --user disable --now stampwatchd")
			fmt.Println()
			fmt.Println("2. Remove files:")
			fmt.Println("   rm ~/.config/systemd/user/stampwatchd.service")
			fmt.Println("   sudo rm /usr/local/bin/stampwatchd")
			fmt.Println()
			fmt.Println("3. Reload systemd:")
			fmt.Println("   systemctl --user daemon-reload")
		},
	}
}
