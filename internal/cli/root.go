// Package cli provides the command-line interface for splash.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/internal/image"
	"github.com/jmylchreest/splash/internal/logging"
	"github.com/jmylchreest/splash/internal/plugin/host"
	"github.com/jmylchreest/splash/internal/plugin/protocol"
	"github.com/jmylchreest/splash/internal/splash"
	"github.com/jmylchreest/splash/internal/version"
)

// HostEnv is the environment variable naming the default host.
const HostEnv = "SPLASH_HOST"

// app holds the global flags shared by every command.
type app struct {
	configs   []string
	platform  string
	logLevel  string
	logJSON   bool
	hostName  string
	hostDir   string
	resources string

	registry *host.Registry
	runner   protocol.ProcessRunner
}

// NewRootCmd creates the splash command tree.
func NewRootCmd() *cobra.Command {
	a := &app{
		registry: host.NewRegistry(),
		runner:   protocol.NewRealProcessRunner(),
	}

	rootCmd := &cobra.Command{
		Use:   "splash",
		Short: "A splash screen lifecycle controller",
		Long: `splash drives a splash screen through show, auto-hide, hide and delegated
animation, resolving every setting from call options, platform-specific
configuration and global configuration.

Session scripts can be simulated on virtual time against a recording host, or
run in real time against an external host binary.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(version.String() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringArrayVarP(&a.configs, "config", "c", nil, "configuration file (.json or .toml), repeat to layer")
	flags.StringVarP(&a.platform, "platform", "p", string(config.PlatformFromEnv(config.PlatformIOS)), "platform to resolve for (ios, android)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, silent), overrides logger.level")
	flags.BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	flags.StringVar(&a.hostName, "host", envOr(HostEnv, "sim"), "built-in host name or path to a host binary")
	flags.StringVar(&a.hostDir, "host-dir", "", "only allow host binaries inside this directory")
	flags.StringVar(&a.resources, "resources", "", "directory of splash images to check sources against")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newResolveCmd(a))
	rootCmd.AddCommand(newOptionsCmd(a))
	rootCmd.AddCommand(newSimulateCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newHostCmd(a))

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// tree loads the configuration files and layers extra on top.
func (a *app) tree(extra config.Tree) (config.Tree, error) {
	tree, err := config.Load(a.configs...)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return tree, nil
	}
	return config.Merge(tree, extra)
}

func (a *app) resolver(tree config.Tree) (*config.Resolver, error) {
	platform, err := config.ParsePlatform(a.platform)
	if err != nil {
		return nil, err
	}
	return config.NewResolver(tree, platform), nil
}

func (a *app) logger(cmd *cobra.Command, r *config.Resolver) (hclog.Logger, error) {
	opts := logging.FromConfig(r)
	if a.logLevel != "" {
		opts.Level = a.logLevel
	}
	if a.logJSON {
		opts.JSON = true
	}
	opts.Output = cmd.ErrOrStderr()
	return logging.New(opts)
}

func (a *app) connect(ctx context.Context, clock splash.Clock, noDelegate bool, logger hclog.Logger) (*host.Connection, error) {
	h, err := a.registry.Resolve(a.hostName, a.runner)
	if err != nil {
		return nil, err
	}
	env := host.Env{
		Clock:      clock,
		NoDelegate: noDelegate,
		HostDir:    a.hostDir,
		Logger:     logger,
	}
	if a.resources != "" {
		env.Resources = image.NewResources(a.resources)
	}
	return h.Connect(ctx, env)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, host protocol version and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
