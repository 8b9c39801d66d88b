package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/presentation"
	"github.com/soyeahso/frontdesk/internal/store"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect or clear the token the kiosk will resume with",
	}

	cmd.AddCommand(newTokenShowCmd())
	cmd.AddCommand(newTokenClearCmd())
	cmd.AddCommand(newTokenQRCmd())
	return cmd
}

// withTokenStore opens the configured store for the duration of fn.
func withTokenStore(cmd *cobra.Command, fn func(ctx context.Context, ts store.TokenStore) error) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	b := newBackends(paths, log)
	defer b.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ts, err := b.tokenStore(ctx, c.Store)
	if err != nil {
		return err
	}
	return fn(ctx, ts)
}

func loadToken(ctx context.Context, ts store.TokenStore) (domain.TokenRecord, error) {
	rec, err := ts.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return rec, errors.New("no token stored")
	case errors.Is(err, domain.ErrCorruptRecord):
		return rec, fmt.Errorf("stored token is unreadable (run `frontdesk token clear`): %w", err)
	}
	return rec, err
}

func newTokenShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored token card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd, func(ctx context.Context, ts store.TokenStore) error {
				rec, err := loadToken(ctx, ts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					payload, err := presentation.Payload(rec)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, payload)
					return nil
				}
				fmt.Fprint(out, presentation.Card(rec))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record as JSON")
	return cmd
}

func newTokenClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored token so the kiosk starts fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd, func(ctx context.Context, ts store.TokenStore) error {
				if err := ts.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token cleared")
				return nil
			})
		},
	}
}

func newTokenQRCmd() *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Print the stored token's QR code, or save it as a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd, func(ctx context.Context, ts store.TokenStore) error {
				rec, err := loadToken(ctx, ts)
				if err != nil {
					return err
				}

				if out == "" {
					qr, err := presentation.TerminalQR(rec)
					if err != nil {
						return err
					}
					fmt.Fprint(cmd.OutOrStdout(), qr)
					return nil
				}

				if out == "-" {
					out = presentation.FileName(rec)
				}
				png, err := presentation.PNG(rec, size)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, png, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write a PNG to this file (\"-\" for patient-token-<code>.png)")
	cmd.Flags().IntVar(&size, "size", presentation.DefaultPNGSize, "PNG edge length in pixels")
	return cmd
}
