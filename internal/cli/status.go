package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/soyeahso/frontdesk/internal/config"
	"github.com/soyeahso/frontdesk/internal/store"
	"github.com/soyeahso/frontdesk/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show kiosk status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Frontdesk %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:    %s\n", paths.Logs)
			fmt.Fprintln(out)

			if cfgErr != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", cfgErr)
				return nil
			}
			c := cfg

			fmt.Fprintf(out, "Kiosk:   %s (reply delay %s)\n", c.Dialogue.KioskName, c.Dialogue.ReplyDelay())
			fmt.Fprintf(out, "Gateway: port=%d bind=%s auth=%s tls=%v\n",
				c.Gateway.Port, c.Gateway.Bind, c.Gateway.Auth.Mode, c.Gateway.TLS.Enabled)

			storeLine := c.Store.Backend
			if p := paths.StorePath(c.Store); p != "" {
				storeLine += " " + p
			} else if c.Store.Backend == "redis" {
				storeLine += " " + c.Store.Redis.Addr
			}
			fmt.Fprintf(out, "Store:   %s\n", storeLine)

			doctors := buildDirectory(c.Directory).List()
			fmt.Fprintf(out, "Doctors: %d\n", len(doctors))
			if c.Speech.Enabled {
				v := voiceFromConfig(c.Speech)
				fmt.Fprintf(out, "Speech:  lang=%s rate=%.1f pitch=%.1f volume=%.1f\n", v.Lang, v.Rate, v.Pitch, v.Volume)
			} else {
				fmt.Fprintln(out, "Speech:  off")
			}

			// Validation
			issues := config.Validate(&c)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
				return nil
			}

			b := newBackends(paths, log)
			defer b.Close()
			ctx := context.Background()

			ts, err := b.tokenStore(ctx, c.Store)
			if err != nil {
				fmt.Fprintf(out, "Token:   error: %v\n", err)
			} else {
				rec, err := ts.Load(ctx)
				switch {
				case err == nil:
					fmt.Fprintf(out, "Token:   %s for %s\n", rec.Code, rec.Doctor)
				case errors.Is(err, store.ErrNotFound):
					fmt.Fprintln(out, "Token:   (none)")
				default:
					fmt.Fprintf(out, "Token:   error: %v\n", err)
				}
			}

			chats, err := b.chatLog(c.Audit)
			switch {
			case err != nil:
				fmt.Fprintf(out, "Audit:   error: %v\n", err)
			case chats == nil:
				fmt.Fprintln(out, "Audit:   off")
			default:
				total, open, err := chats.CountSessions(ctx)
				if err != nil {
					fmt.Fprintf(out, "Audit:   error: %v\n", err)
				} else {
					fmt.Fprintf(out, "Audit:   %d sessions (%d open) in %s\n", total, open, paths.AuditPath(c.Audit))
				}
			}

			return nil
		},
	}

	return cmd
}
