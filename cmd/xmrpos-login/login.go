package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/monerokon/xmrpos-login/cliout"
	"github.com/monerokon/xmrpos-login/login"
	"github.com/monerokon/xmrpos-login/loginform"
	"github.com/monerokon/xmrpos-login/logutil"
	"github.com/monerokon/xmrpos-login/profile"
)

// errLoginFailed marks a login that ended in the Failed state. The message
// has already been printed.
var errLoginFailed = errors.New("login failed")

type loginFlags struct {
	instanceURL   string
	vendorID      string
	username      string
	passwordStdin bool
	noProfile     bool
}

func newLoginCmd(a *app) *cobra.Command {
	f := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against an XMRpos instance",
		Long: `Validate the login form, normalize the instance URL and authenticate.

Form fields come from the saved profile, the config file, the environment and
flags, later sources winning. The password is read from stdin with
--password-stdin or prompted for on a terminal; it is never stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd.Context(), cmd, a, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.instanceURL, "instance-url", "", "XMRpos instance URL (https:// is assumed when omitted)")
	flags.StringVar(&f.vendorID, "vendor-id", "", "vendor ID")
	flags.StringVar(&f.username, "username", "", "POS username")
	flags.BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from stdin")
	flags.BoolVar(&f.noProfile, "no-profile", false, "neither read nor save the login profile")

	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, a *app, f *loginFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logutil.NewLogger("cli").WithOperation("login")

	form := a.cfg.Form()
	flags := cmd.Flags()
	override(flags, "instance-url", &form.InstanceURL, f.instanceURL)
	override(flags, "vendor-id", &form.VendorID, f.vendorID)
	override(flags, "username", &form.Username, f.username)

	var store *profile.Store
	if !f.noProfile {
		var err error
		if store, err = a.cfg.ProfileStore(); err != nil {
			return err
		}
		prefillFromProfile(store, &form, log)
	}

	password, err := a.readPassword(cmd, f.passwordStdin, form)
	if err != nil {
		return err
	}
	form.Password = password

	clientOpts := a.cfg.ClientOptions()
	clientOpts.UserAgent = a.info.UserAgent()
	clientOpts.Logger = logutil.NewLogger("authclient")

	opts := []login.Option{login.WithLogger(logutil.NewLogger("login"))}
	if store != nil {
		opts = append(opts, login.WithOnSuccess(func(st login.State) {
			saveProfile(store, st, log)
		}))
	}
	ctrl := login.NewController(a.deps.newClient(clientOpts), opts...)

	rendered := renderProgress(ctrl)
	st, err := ctrl.SubmitAndWait(ctx, &form)
	ctrl.Close()
	<-rendered
	if err != nil {
		return err
	}

	if err := cliout.Print(st, func() { printOutcome(st, form) }); err != nil {
		return err
	}
	if !st.Succeeded() {
		return errLoginFailed
	}
	return nil
}

// override copies value into dst when the flag was set explicitly, so an
// empty flag can still clear a configured value.
func override(flags *pflag.FlagSet, name string, dst *string, value string) {
	if flags.Changed(name) {
		*dst = value
	}
}

// prefillFromProfile fills empty fields from the saved profile. A broken
// profile file only produces a warning.
func prefillFromProfile(store *profile.Store, form *loginform.Form, log *logutil.ComponentLogger) {
	p, found, err := store.Load()
	if err != nil {
		log.Warn("ignoring unreadable profile", "path", store.Path(), "error", err)
		return
	}
	if found {
		p.Prefill(form)
	}
}

func saveProfile(store *profile.Store, st login.State, log *logutil.ComponentLogger) {
	p, ok := profile.FromState(st)
	if !ok {
		return
	}
	if err := store.Save(p); err != nil {
		log.Warn("failed to save profile", "path", store.Path(), "error", err)
		return
	}
	log.Debug("profile saved", "path", store.Path())
}

// readPassword takes the first line of stdin with --password-stdin, prompts
// without echo on a terminal, and otherwise leaves the password empty so
// validation reports it.
func (a *app) readPassword(cmd *cobra.Command, fromStdin bool, form loginform.Form) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(a.deps.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if !a.deps.isTerminal() || cliout.IsJSON() {
		return "", nil
	}

	prompt := "Password"
	if form.Username != "" {
		prompt = fmt.Sprintf("Password for %s", form.Username)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", prompt)
	pw, err := a.deps.readPassword()
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// renderProgress prints a line when the attempt goes in flight. The returned
// channel closes once the controller's subscription ends.
func renderProgress(ctrl *login.Controller) <-chan struct{} {
	updates, _ := ctrl.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range updates {
			if st.InProgress() && !cliout.IsJSON() {
				cliout.Info("Authenticating...")
			}
		}
	}()
	return done
}

func printOutcome(st login.State, form loginform.Form) {
	if !st.Succeeded() {
		cliout.Error("%s", st.ErrorMessage())
		return
	}

	cliout.Success("Logged in to %s", form.InstanceURL)
	if st.Session != nil {
		cliout.Label("Vendor ID", strconv.Itoa(st.Session.VendorID))
		cliout.Label("Username", st.Session.Username)
	}
}
