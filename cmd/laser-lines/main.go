package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/laser-lines/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for command output and the
	// MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "laser-lines",
		Short: "Sub-pixel laser line extraction",
		Long: `laser-lines finds the centerlines of thin bright or dark stripes in
grayscale images and writes them as col,row CSV files.

Environment variables:
  LASER_LINES_LOG_LEVEL=debug    Enable debug logging`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			server.ServerVersion = Version
			if debugEnabled() {
				log.Printf("laser-lines v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
			}
		},
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (JSON or YAML); defaults to "+defaultConfigHint())

	root.AddCommand(
		newExtractCmd(),
		newParamsCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func debugEnabled() bool {
	return os.Getenv("LASER_LINES_LOG_LEVEL") == "debug"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "laser-lines %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `serve exposes image loading and line extraction as MCP tools over
JSON-RPC 2.0 on stdin/stdout. Configure it in your MCP client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			srv := server.NewWithConfig(cfg)
			defer srv.Close()
			if err := srv.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				log.Printf("Server error: %v", err)
				return err
			}
			return nil
		},
	}
}
