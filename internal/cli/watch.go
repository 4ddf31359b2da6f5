package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/session"
	"github.com/celerix-dev/painel-store/pkg/syncbus"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	var user, name, jobTitle string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a client session in the terminal and print its state as it changes",
		Long: `Run a client session in the terminal and print its state as it changes.
The session reacts to other clients' writes, runs the heartbeat and honours global resets.

Example:
  painel watch --user ana --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				user = opts.Config.User
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			m, svc, err := opts.openWith(session.ServiceOptions{
				Prompter: syncbus.PrompterFunc(func(msg string) { fmt.Fprintln(errOut, msg) }),
				Reloader: syncbus.ReloaderFunc(func() { fmt.Fprintln(errOut, "medium wiped, state will reload") }),
			})
			if err != nil {
				return err
			}
			defer m.Close()

			identity := func() (schema.Identity, bool) { return schema.Identity{}, false }
			if user != "" {
				identity = session.StaticIdentity(schema.Identity{Username: user, Name: name, JobTitle: jobTitle})
			}
			s := session.New(svc, m, session.Options{
				Heartbeat: opts.Config.Heartbeat,
				Identity:  identity,
				Logger:    opts.logger.Named("session"),
			})

			p := opts.printer(out)
			s.OnUpdate(func(st session.State) {
				_ = p.print(st, func(w io.Writer) { printState(w, st) })
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username to act as (defaults to PAINEL_USER_NAME)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&jobTitle, "job-title", "", "job title")
	return cmd
}

func printState(w io.Writer, st session.State) {
	who := "signed out"
	if st.SignedIn {
		who = st.User.Username
	}
	status := "online"
	if !st.Online {
		status = "offline"
	}
	fmt.Fprintf(w, "[%s, %s] unread=%d forbidden-color=%s\n", who, status, st.Unread, st.ForbiddenColor.Name)
	if st.Announcement != nil {
		fmt.Fprintf(w, "  announcement: %s: %s\n", st.Announcement.Title, st.Announcement.Message)
	}
	for _, n := range st.Notifications {
		if !n.Read {
			fmt.Fprintf(w, "  * %s\n", n.Message)
		}
	}
}

