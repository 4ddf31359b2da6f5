package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <namespace>",
		Short: "Print the value stored under a namespace",
		Long: `Print the value stored under a namespace.

Example:
  painel get reports
  painel get app-config --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			raw, err := m.Get(svc.Keys.Key(schema.Namespace(args[0])))
			if errors.Is(err, medium.ErrKeyNotFound) {
				return fmt.Errorf("namespace %q is empty", args[0])
			}
			if err != nil {
				return err
			}

			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				// Raw scalars such as the reset watermark are not JSON
				v = raw
			}
			return opts.printer(cmd.OutOrStdout()).print(v, nil)
		},
	}
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every key in the medium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			keys, err := m.Keys()
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).print(keys, func(w io.Writer) {
				for _, k := range keys {
					fmt.Fprintln(w, k)
				}
			})
		},
	}
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(opts *RootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the audit log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			var logs []schema.LogRecord
			for _, l := range svc.Log.List() {
				if category == "" || strings.EqualFold(string(l.Category), category) {
					logs = append(logs, l)
				}
			}
			return opts.printer(cmd.OutOrStdout()).print(logs, func(w io.Writer) {
				for _, l := range logs {
					fmt.Fprintf(w, "%s  %-12s %-7s %s (%s) by %s\n",
						l.CreatedAt.Format("2006-01-02 15:04"), l.Category, l.Action, l.Description, l.Details, l.CreatedBy)
				}
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only entries of this category")
	return cmd
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand(opts *RootOptions) *cobra.Command {
	var toggle string
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the responsibility matrix for the current period",
		Long: `Print the responsibility matrix for the current period.
Reading it runs the monthly reset if a new month started.

Example:
  painel matrix --toggle preposto/p1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			var matrix []schema.MatrixRole
			if toggle != "" {
				role, task, ok := strings.Cut(toggle, "/")
				if !ok {
					return fmt.Errorf("invalid --toggle %q: want <role>/<task>", toggle)
				}
				matrix, err = svc.Scheduler.ToggleTask(role, task)
			} else {
				matrix, err = svc.Scheduler.Matrix()
			}
			if err != nil {
				return err
			}

			return opts.printer(cmd.OutOrStdout()).print(matrix, func(w io.Writer) {
				for _, r := range matrix {
					fmt.Fprintf(w, "%s (%s)\n", r.Title, r.ID)
					for _, t := range r.Tasks {
						mark := " "
						if t.Completed {
							mark = "x"
						}
						fmt.Fprintf(w, "  [%s] %-16s %s\n", mark, t.ID, t.Description)
					}
				}
			})
		},
	}
	cmd.Flags().StringVar(&toggle, "toggle", "", "flip one task, given as <role>/<task>")
	return cmd
}
