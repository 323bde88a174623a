package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/api"
	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/daemon"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API without watching any directories.

Set server.api_token in the config to require "Authorization: Bearer <token>".

Examples:
  stampwatch serve                         # Listen on server.addr
  stampwatch serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{LogLevel: logLevelFor("info")})
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.Config.Server.Addr = addr
			}

			server := api.NewServer(api.Options{
				Config:   a.Config,
				Registry: a.Registry,
				Scanner:  a.Scanner,
				Activity: a.Activity,
				Logger:   a.Logger,
				Version:  version,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Starting stampwatch API on http://%s\n", a.Config.Server.Addr)
			return daemon.New(daemon.Config{Server: server.HTTPServer(), Logger: a.Logger}).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config)")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Watch directories and detect timestamps as files arrive",
		Long: `Run the stampwatch daemon in the foreground: watch directories, detect
the timestamp of every new file, queue files that need review and serve
the HTTP API. Without arguments the configured watch.directories are used.

Examples:
  stampwatch watch ~/Pictures/inbox
  stampwatch watch                        # Use watch.directories`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{LogLevel: logLevelFor("info")})
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.NewDaemon(args, version)
			if err != nil {
				return err
			}
			return d.Run(cmd.Context())
		},
	}
	return cmd
}

// logLevelFor keeps long-running commands at level unless --verbose asks
// for more.
func logLevelFor(level string) string {
	if verbose {
		return "debug"
	}
	return level
}
