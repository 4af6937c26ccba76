package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/camerakit/go/camera"
	"github.com/camerakit/go/config"
	cerrors "github.com/camerakit/go/errors"
	"github.com/camerakit/go/logging"
	"github.com/camerakit/go/telemetry"
)

const usage = `usage: camctl [-config file] [-log-level level] <command> [arguments]

commands:
  set <cgi> <param>=<value>...   assign parameter values
  inq <cgi> <param>...           read parameter values
  sync                           read every configured parameter
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = telemetry.Shutdown(shutdownCtx)
	cancel()
	cerrors.Flush(2 * time.Second)
	logging.Sync()

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "camctl:", err)
		}
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("camctl", flag.ContinueOnError)
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	configPath := flags.String("config", "", "path to a YAML configuration file")
	logLevel := flags.String("log-level", "", "override LOG_LEVEL")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *logLevel != "" {
		if err := logging.SetLevel(*logLevel); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cerrors.Init(cfg.Sentry.DSN)

	cameraConfig, err := cfg.CameraConfig()
	if err != nil {
		return err
	}
	client := camera.New(cameraConfig)

	args = flags.Args()
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	ctx = logging.AddFields(ctx, zap.String("command", args[0]))

	switch args[0] {
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("%w: set needs a cgi and at least one assignment", errUsage)
		}
		params := make(map[string]string, len(args)-2)
		for _, arg := range args[2:] {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" {
				return fmt.Errorf("%w: %q is not of the form param=value", errUsage, arg)
			}
			params[key] = value
		}
		if _, err := client.Set(ctx, args[1], params); err != nil {
			return report(err, args[1])
		}

	case "inq":
		if len(args) < 3 {
			return fmt.Errorf("%w: inq needs a cgi and at least one parameter", errUsage)
		}
		values, err := client.Inquire(ctx, args[1], args[2:]...)
		if err != nil {
			return report(err, args[1])
		}
		for _, name := range args[2:] {
			if value, ok := values[name]; ok {
				fmt.Fprintf(stdout, "%s=%s\n", name, value)
			}
		}

	case "sync":
		params := cfg.CameraParameters()
		values, err := client.Sync(ctx, params)
		if err != nil {
			return report(err, "")
		}
		for _, p := range params {
			if value, ok := values[p]; ok {
				fmt.Fprintf(stdout, "%s %s=%s\n", p.CGI, p.Name, value)
			} else {
				fmt.Fprintf(stdout, "%s %s (not reported)\n", p.CGI, p.Name)
			}
		}

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	return nil
}

// report forwards failures talking to the camera to Sentry.
func report(err error, cgi string) error {
	if errors.Is(err, camera.ErrTransport) || errors.Is(err, camera.ErrAuthenticationRejected) {
		tags := map[string]string{}
		if cgi != "" {
			tags["cgi"] = cgi
		}
		cerrors.Capture(err, tags)
	}
	return err
}
