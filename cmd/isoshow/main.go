// Command isoshow lists, serves and exports the implicit surface showcase.
//
// Usage:
//
//	isoshow [-config isoshow.toml] [-verbose] <command> [flags]
//
// Commands are list, serve, export, preview and profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/config"
)

type command struct {
	name  string
	usage string
	run   func(app *app, args []string) error
}

var commands = []command{
	{name: "list", usage: "list scenes and surfaces", run: runList},
	{name: "serve", usage: "serve the scene host over HTTP", run: runServe},
	{name: "export", usage: "write a surface mesh as STL or OBJ", run: runExport},
	{name: "preview", usage: "render a surface to PNG", run: runPreview},
	{name: "profile", usage: "plot a surface's field along an axis", run: runProfile},
}

type app struct {
	cfg config.Config
	log *logrus.Logger
	out io.Writer
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logrus.WithError(err).Fatal("isoshow")
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("isoshow", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		cfgPath = fs.String("config", config.DefaultFile, "TOML configuration file")
		verbose = fs.Bool("verbose", false, "Verbose mode")
	)
	fs.Usage = func() {
		fmt.Fprintln(out, "usage: isoshow [flags] <command> [command flags]\n\ncommands:")
		for _, c := range commands {
			fmt.Fprintf(out, "  %-8s %s\n", c.name, c.usage)
		}
		fmt.Fprintln(out, "\nflags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}
	cfg, err := config.LoadOptional(*cfgPath)
	if err != nil {
		return err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose || cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	a := &app{cfg: cfg, log: log, out: out}
	name := fs.Arg(0)
	for _, c := range commands {
		if c.name == name {
			return c.run(a, fs.Args()[1:])
		}
	}
	fs.Usage()
	return fmt.Errorf("unknown command %q", name)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
