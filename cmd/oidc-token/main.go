// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/oidcagent/lib/agent"
	"github.com/bureau-foundation/oidcagent/lib/config"
	"github.com/bureau-foundation/oidcagent/lib/mytoken"
	"github.com/bureau-foundation/oidcagent/lib/request"
	"github.com/bureau-foundation/oidcagent/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// usageError is a command-line mistake. It exits with status 2.
type usageError struct {
	message string
}

func (e *usageError) Error() string { return e.message }

func usagef(format string, args ...any) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

type options struct {
	configPath      string
	socket          string
	codec           string
	issuer          string
	minValidPeriod  int
	scopes          []string
	audiences       []string
	applicationHint string
	mytoken         bool
	profilePath     string
	accounts        bool
	full            bool
	showVersion     bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("oidc-token", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.socket, "socket", "", "oidc-agent socket path (default: $OIDC_SOCK)")
	flagSet.StringVar(&opts.codec, "codec", "", "wire encoding: json or cbor")
	flagSet.StringVar(&opts.issuer, "issuer", "", "select the account by issuer URL")
	flagSet.IntVarP(&opts.minValidPeriod, "time", "t", 0, "minimum remaining lifetime of the token in seconds")
	flagSet.StringArrayVarP(&opts.scopes, "scope", "s", nil, "scope to request (repeatable)")
	flagSet.StringArrayVarP(&opts.audiences, "audience", "a", nil, "audience to request (repeatable)")
	flagSet.StringVar(&opts.applicationHint, "application-hint", "", "application name shown in confirmation prompts")
	flagSet.BoolVar(&opts.mytoken, "mytoken", false, "request a mytoken instead of an access token")
	flagSet.StringVar(&opts.profilePath, "profile", "", "mytoken profile document (JSON or JSONC)")
	flagSet.BoolVar(&opts.accounts, "accounts", false, "list the accounts loaded in the agent")
	flagSet.BoolVar(&opts.full, "full", false, "print issuer and expiry to stderr")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information")
	return flagSet
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := newFlagSet(&opts)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usagef("%v", err)
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "oidc-token %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(flagSet, &opts)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := newLogger(stderr, level).With("command", "oidc-token")

	wireCodec, err := cfg.WireCodec()
	if err != nil {
		return err
	}

	positional := flagSet.Args()
	if len(positional) > 1 {
		return usagef("expected at most one account, got %d arguments", len(positional))
	}
	account := ""
	if len(positional) == 1 {
		account = positional[0]
	}

	switch {
	case opts.accounts && opts.mytoken:
		return usagef("--accounts and --mytoken are mutually exclusive")
	case opts.accounts && account != "":
		return usagef("--accounts takes no account argument")
	case !opts.accounts && account == "" && (opts.mytoken || opts.issuer == ""):
		return usagef("an account short name is required")
	}

	client, err := agent.NewAsyncWithConfig(ctx, agent.Config{
		Resolver: cfg.Resolver(),
		Codec:    wireCodec,
		Logger:   logger,
		Lazy:     cfg.Lazy,
	})
	if err != nil {
		return err
	}

	switch {
	case opts.accounts:
		return printAccounts(ctx, client, stdout)
	case opts.mytoken:
		return printMyToken(ctx, client, cfg, account, stdout, stderr, opts.full)
	default:
		return printAccessToken(ctx, client, cfg, &opts, flagSet, account, stdout, stderr)
	}
}

// loadConfig reads --config or OIDC_AGENT_CLIENT_CONFIG and applies
// flags that override file values.
func loadConfig(flagSet *pflag.FlagSet, opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagSet.Changed("socket") {
		cfg.Socket = opts.socket
	}
	if flagSet.Changed("codec") {
		cfg.Codec = opts.codec
	}
	if flagSet.Changed("application-hint") {
		cfg.ApplicationHint = opts.applicationHint
	}
	if flagSet.Changed("profile") {
		cfg.MyToken.Profile = opts.profilePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func printAccounts(ctx context.Context, client *agent.AsyncAgent, stdout io.Writer) error {
	accounts, err := client.GetLoadedAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		fmt.Fprintln(stdout, account)
	}
	return nil
}

func printAccessToken(ctx context.Context, client *agent.AsyncAgent, cfg *config.Config, opts *options, flagSet *pflag.FlagSet, account string, stdout, stderr io.Writer) error {
	builder := request.NewAccessTokenRequest().
		Account(account).
		Issuer(opts.issuer).
		ApplicationHint(cfg.ApplicationHint)

	minValidPeriod := cfg.AccessToken.MinValidPeriod
	if flagSet.Changed("time") {
		minValidPeriod = opts.minValidPeriod
	}
	if minValidPeriod != 0 || flagSet.Changed("time") {
		builder.MinValidPeriod(minValidPeriod)
	}

	scopes := cfg.AccessToken.Scopes
	if flagSet.Changed("scope") {
		scopes = opts.scopes
	}
	builder.Scope(scopes...)

	audiences := cfg.AccessToken.Audiences
	if flagSet.Changed("audience") {
		audiences = opts.audiences
	}
	builder.Audience(audiences...)

	req, err := builder.Build()
	if err != nil {
		return usagef("%v", err)
	}

	full, err := client.RequestAccessToken(ctx, req)
	if err != nil {
		return err
	}
	defer full.Close()

	fmt.Fprintln(stdout, full.AccessToken().Secret())
	if opts.full {
		fmt.Fprintf(stderr, "issuer: %s\nexpires: %s\n", full.Issuer(), formatExpiry(full.ExpiresAt()))
	}
	return nil
}

func printMyToken(ctx context.Context, client *agent.AsyncAgent, cfg *config.Config, account string, stdout, stderr io.Writer, showFull bool) error {
	builder := request.NewMyTokenRequest(account).ApplicationHint(cfg.ApplicationHint)
	if cfg.MyToken.Profile != "" {
		profile, err := mytoken.ReadProfileFile(cfg.MyToken.Profile)
		if err != nil {
			return fmt.Errorf("loading mytoken profile: %w", err)
		}
		builder.Profile(profile)
	}

	req, err := builder.Build()
	if err != nil {
		return usagef("%v", err)
	}

	full, err := client.RequestMyToken(ctx, req)
	if err != nil {
		return err
	}
	defer full.Close()

	fmt.Fprintln(stdout, full.MyToken().Secret())
	if showFull {
		fmt.Fprintf(stderr, "mytoken issuer: %s\noidc issuer: %s\nexpires: %s\n",
			full.MyTokenIssuer(), full.OIDCIssuer(), formatExpiry(full.ExpiresAt()))
		if capabilities := full.Capabilities(); len(capabilities) > 0 {
			fmt.Fprintf(stderr, "capabilities: %v\n", capabilities)
		}
	}
	return nil
}

// formatExpiry renders an expires_at value. Zero means the token does
// not expire.
func formatExpiry(expiresAt int64) string {
	if expiresAt == 0 {
		return "never"
	}
	return time.Unix(expiresAt, 0).UTC().Format(time.RFC3339)
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(stderr io.Writer, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if file, ok := stderr.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.New(slog.NewTextHandler(stderr, options))
	}
	return slog.New(slog.NewJSONHandler(stderr, options))
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `oidc-token prints OIDC tokens obtained from a running oidc-agent.

Usage:
  oidc-token [flags] <account>
  oidc-token --issuer <url> [flags]
  oidc-token --mytoken [--profile FILE] <account>
  oidc-token --accounts

Examples:
  # Access token valid for at least five more minutes
  oidc-token -t 300 egi

  # Restrict scopes and audience
  oidc-token -s openid -s profile -a https://storage.example.org egi

  # Mytoken with a profile document
  oidc-token --mytoken --profile ~/.config/oidc-agent/ci.jsonc egi

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
