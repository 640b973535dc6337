package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bjaus/mediator"
	"github.com/bjaus/mediator/behavior"
	"github.com/bjaus/mediator/httpresult"
	"github.com/bjaus/mediator/internal/users"
)

// errFailed signals a failed Result after it has been printed.
var errFailed = errors.New("dispatch failed")

func newDispatchCmd(opts *options) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "dispatch [file]",
		Short: "Dispatch one JSON envelope and print the result",
		Long: `Dispatch reads a typed envelope ({"type": ..., "payload": ...}) or a
CloudEvents JSON event from file, or from stdin when no file is given,
and prints the result body. The exit status is non-zero on failure.`,
		Example: `  echo '{"type":"users.register","payload":{"username":"ann","password":"password1"}}' | userapp dispatch
  userapp dispatch --as root:secret event.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read envelope: %w", err)
			}

			ctx := cmd.Context()
			a, _, err := opts.build(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if as != "" {
				username, password, _ := strings.Cut(as, ":")
				res, err := mediator.DispatchAs[users.User](ctx, a.Mediator(), users.Authenticate{Username: username, Password: password})
				if err != nil {
					return err
				}
				if !res.Success() {
					return fmt.Errorf("authenticate %s: %w", username, res.Err())
				}
				u := res.MustValue()
				ctx = behavior.WithPrincipal(ctx, behavior.Principal{ID: string(u.ID), Roles: u.Roles})
			}

			res, err := a.Inbox().Process(ctx, raw)
			if err != nil {
				res = httpresult.FromError(err)
			}
			_, body := httpresult.Adapt(res)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(body); err != nil {
				return err
			}
			if !res.Success() {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "authenticate as username:password before dispatching")
	return cmd
}
