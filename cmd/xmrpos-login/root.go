package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/monerokon/xmrpos-login/authclient"
	"github.com/monerokon/xmrpos-login/cliout"
	"github.com/monerokon/xmrpos-login/config"
	"github.com/monerokon/xmrpos-login/login"
	"github.com/monerokon/xmrpos-login/logutil"
	"github.com/monerokon/xmrpos-login/version"
)

const appName = "xmrpos-login"

// deps holds the process boundaries commands touch, replaced in tests.
type deps struct {
	stdin        io.Reader
	isTerminal   func() bool
	readPassword func() ([]byte, error)
	newClient    func(authclient.Options) login.AuthClient
	environ      map[string]string
}

func defaultDeps() *deps {
	fd := int(os.Stdin.Fd())
	return &deps{
		stdin:        os.Stdin,
		isTerminal:   func() bool { return term.IsTerminal(fd) },
		readPassword: func() ([]byte, error) { return term.ReadPassword(fd) },
		newClient: func(opts authclient.Options) login.AuthClient {
			return authclient.New(opts)
		},
	}
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile string
	output     string
	debug      bool
	logFormat  string
}

// app is the state resolved in PersistentPreRunE.
type app struct {
	deps  *deps
	flags rootFlags
	info  *version.Info
	cfg   *config.Config
}

// NewRootCmd creates the root command.
func NewRootCmd(d *deps) *cobra.Command {
	a := &app{deps: d, info: version.New(appName)}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Log a point-of-sale device into an XMRpos instance",
		Long: `xmrpos-login validates POS credentials, normalizes the instance URL
and authenticates against the instance's /auth/login-pos endpoint.

Settings are read from $XDG_CONFIG_HOME/xmrpos/config.yaml (or --config),
then XMRPOS_* environment variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file path")
	flags.StringVarP(&a.flags.output, "output", "o", "default", "output format (default, json)")
	flags.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format (text, json)")

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newProfileCmd(a))
	cmd.AddCommand(version.NewCommand(a.info))

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := cliout.SetFormat(a.flags.output); err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{Path: a.flags.configFile, Environ: a.deps.environ})
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = a.flags.debug
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	logutil.SetupLoggerWithWriter(cmd.ErrOrStderr(), cfg.Debug, cfg.StructuredLogs())
	if !cfg.Debug {
		// Progress is reported through cliout; logs are for warnings only.
		logutil.SetLevel(logutil.LevelWarn)
	}
	return nil
}
