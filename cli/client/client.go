// Package client holds the "persons" commands: a terminal front-end to a
// running phonebook service, built on [directory.Directory].
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/oaiiae/phonebook/directory"
)

// Options holds the flags shared by every persons command.
type Options struct {
	Server string
	Yes    bool
}

var errNoTerminal = errors.New("confirmation needs a terminal, pass --yes to confirm")

func NewCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "persons",
		Short: "Browse and edit the persons of a running phonebook service",
		// arguments are valid by now, a failure past this point is not a usage error
		PersistentPreRun: func(cmd *cobra.Command, _ []string) { cmd.SilenceUsage = true },
	}
	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", directory.DefaultBaseURL, "persons endpoint of the service")
	cmd.PersistentFlags().BoolVarP(&opts.Yes, "yes", "y", false, "answer yes to every confirmation")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))

	return cmd
}

func newListCommand(opts *Options) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons, optionally only those named exactly like --filter (case-insensitive)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()
			return directory.Render(cmd.OutOrStdout(), d.Filter(filter))
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "show only this name")
	return cmd
}

func newGetCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show the person with exactly this name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := directory.NewClient(opts.Server, nil).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return directory.Render(cmd.OutOrStdout(), []directory.Person{p})
		},
	}
}

func newAddCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME NUMBER",
		Short: "Add a person, or replace the number of the person with this name",
		Args:  cobra.ExactArgs(2), //nolint: mnd // name and number
		RunE: func(cmd *cobra.Command, args []string) error {
			d, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()
			outcome, err := d.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if outcome == directory.OutcomeDeclined {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing changed")
			}
			return nil
		},
	}
}

func newDeleteCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME|ID",
		Short: "Delete a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			id, err := resolve(d, args[0])
			if err != nil {
				return err
			}
			outcome, err := d.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if outcome == directory.OutcomeDeclined {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing changed")
			}
			return nil
		},
	}
}

// resolve finds a cached person by exact name first, then by ID.
func resolve(d *directory.Directory, arg string) (int64, error) {
	if p, ok := d.Lookup(arg); ok {
		return p.ID, nil
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	return 0, fmt.Errorf("person %q: %w", arg, directory.ErrNotFound)
}

// open loads a [directory.Directory] whose notices and questions go through cmd.
func (opts *Options) open(cmd *cobra.Command) (*directory.Directory, func(), error) {
	notices := directory.NewNotifier(directory.DefaultNoticeDuration, func(n directory.Notice) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", n.Kind, n.Text)
	})
	d := directory.New(directory.NewClient(opts.Server, nil), opts.confirmer(cmd), notices)
	err := d.Load(cmd.Context())
	if err != nil {
		notices.Stop()
		return nil, nil, err
	}
	return d, notices.Stop, nil
}

func (opts *Options) confirmer(cmd *cobra.Command) directory.Confirmer {
	if opts.Yes {
		return directory.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	}
	return &prompter{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
}

// prompter asks on out and reads a y/N answer from in.
type prompter struct {
	in  io.Reader
	out io.Writer
	r   *bufio.Reader
}

func (p *prompter) Confirm(_ context.Context, prompt string) (bool, error) {
	if f, ok := p.in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false, errNoTerminal
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.in)
	}

	fmt.Fprint(p.out, prompt+" [y/N] ")
	line, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
