package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// NewAnnounceCommand creates the announce command.
func NewAnnounceCommand(opts *RootOptions) *cobra.Command {
	var title, message, author string
	var inactive bool
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Publish the global announcement",
		Long: `Publish the global announcement, replacing the current one.

Example:
  painel announce --title "Fire drill" --message "Thursday at 3pm" --author admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			a, err := svc.Announcements.Set(schema.Announcement{
				Title:     title,
				Message:   message,
				Active:    !inactive,
				CreatedBy: author,
			})
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).print(a, func(w io.Writer) {
				fmt.Fprintf(w, "announcement %s published\n", a.ID)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "announcement title")
	cmd.Flags().StringVar(&message, "message", "", "announcement body")
	cmd.Flags().StringVar(&author, "author", "admin", "username recorded as the author")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "store the announcement without showing it")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// NewClearAnnouncementCommand creates the clear-announcement command.
func NewClearAnnouncementCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-announcement",
		Short: "Remove the global announcement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			if err := svc.Announcements.Clear(); err != nil {
				return err
			}
			opts.printer(cmd.OutOrStdout()).line("announcement cleared")
			return nil
		},
	}
}

// NewNotifyCommand creates the notify command.
func NewNotifyCommand(opts *RootOptions) *cobra.Command {
	var mention bool
	var module, tab string
	cmd := &cobra.Command{
		Use:   "notify <user> <message>",
		Short: "Send a notification to one user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			kind := schema.NotificationSystem
			if mention {
				kind = schema.NotificationMention
			}
			n, err := svc.Notifications.Add(schema.Notification{
				UserID:       args[0],
				Message:      args[1],
				Type:         kind,
				TargetModule: module,
				TargetTab:    tab,
			})
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).print(n, func(w io.Writer) {
				fmt.Fprintf(w, "notification %s sent to %s\n", n.ID, n.UserID)
			})
		},
	}
	cmd.Flags().BoolVar(&mention, "mention", false, "send as a mention instead of a system notice")
	cmd.Flags().StringVar(&module, "module", "", "module the notification links to")
	cmd.Flags().StringVar(&tab, "tab", "", "tab within the module")
	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Issue a global reset: every client wipes its medium on its next check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, svc, err := opts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			issued, err := svc.Reset.Issue(token)
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).print(map[string]string{"token": issued}, func(w io.Writer) {
				fmt.Fprintf(w, "reset issued with token %s\n", issued)
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "reset token (generated when empty)")
	return cmd
}

// NewCopyCommand creates the copy command.
func NewCopyCommand(opts *RootOptions) *cobra.Command {
	var toBackend, toDir string
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy every key into another medium",
		Long: `Copy every key into another medium, for example from the JSON file onto SQLite.

Example:
  painel copy --backend file --data-dir ./data --to-backend sqlite --to-dir ./shared`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := opts.open()
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := medium.Open(opts.mediumOptions(toBackend, toDir))
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer dst.Close()

			n, err := medium.Copy(src, dst)
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).print(map[string]int{"copied": n}, func(w io.Writer) {
				fmt.Fprintf(w, "copied %d keys\n", n)
			})
		},
	}
	cmd.Flags().StringVar(&toBackend, "to-backend", "sqlite", "destination backend (file|sqlite)")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "destination directory")
	_ = cmd.MarkFlagRequired("to-dir")
	return cmd
}
