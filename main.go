package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/phonebook/cli/api"
	"github.com/oaiiae/phonebook/cli/client"
	"github.com/oaiiae/phonebook/cli/logger"
	"github.com/oaiiae/phonebook/datastores"
)

// Set with -ldflags "-X main.version=..." at build time.
var (
	title    = "Phonebook"
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Pass `--port` or set the `SERVICE_PORT` env var.
type Options struct {
	logger.Options
	api.ServerOptions
	api.RouterOptions

	Seed string `doc:"load persons from a YAML file at startup"`
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "persons" {
		err := runPersons(os.Args[1:], os.Stdout, os.Stderr)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Options)

		var srv atomic.Pointer[http.Server]
		hooks.OnStart(func() {
			var seed []*datastores.Person
			if options.Seed != "" {
				var err error
				seed, err = datastores.LoadSeedFile(options.Seed)
				if err != nil {
					log.Error("could not load seed", "err", err)
					os.Exit(1)
				}
			}

			s := api.NewServer(&options.ServerOptions,
				api.NewRouter(&options.RouterOptions, title, version, revision, created, datastores.NewPersonsInmem(seed...), log),
				log,
			)
			srv.Store(s)
			log.Info("listening", "addr", s.Addr, "persons", len(seed))
			err := s.ListenAndServe()
			if err != http.ErrServerClosed {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			s := srv.Load()
			if s == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := s.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
		})
	})

	root := cli.Root()
	root.Use = "phonebook"
	root.Short = "Serve the phonebook API"
	root.Long = "Serve the phonebook API.\n\nRun `phonebook persons --help` to drive a running service from the terminal."

	cli.Run()
}

// runPersons runs the persons commands under a root of their own, so none of
// the server options or setup apply to them.
func runPersons(args []string, stdout, stderr io.Writer) error {
	root := &cobra.Command{Use: "phonebook"}
	root.AddCommand(client.NewCommand())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}
