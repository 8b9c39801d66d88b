package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/frontdesk/internal/kiosk"
	"github.com/soyeahso/frontdesk/internal/presentation"
	"github.com/soyeahso/frontdesk/internal/speech"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		delay time.Duration
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run the kiosk conversation in this terminal",
		Long: "Run the kiosk in the terminal. Each line typed is one patient utterance; " +
			"the assistant's replies and the token card are printed to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				c.Dialogue.ReplyDelayMs = int(delay / time.Millisecond)
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			speakerOpts := []speech.ConsoleOption{speech.WithVoice(voiceFromConfig(c.Speech))}
			if c.Speech.Enabled && !quiet {
				speakerOpts = append(speakerOpts, speech.WithPacing(time.Duration(c.Speech.PacingMs)*time.Millisecond))
			}

			b := newBackends(paths, log)
			defer b.Close()

			setup, err := newKiosk(ctx, c, b,
				kiosk.WithSpeaker(speech.NewConsoleSpeaker(out, "Assistant", speakerOpts...)),
				kiosk.WithPresenter(presentation.NewTerminal(out)),
			)
			if err != nil {
				return err
			}
			k := setup.kiosk

			outcome, err := k.Start(ctx)
			if err != nil {
				return err
			}
			log.Debug().Str("resume", string(outcome)).Msg("terminal kiosk ready")

			runErr := k.Run(ctx, speech.NewLineListener(cmd.InOrStdin()))

			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := k.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("closing kiosk")
			}

			if runErr != nil && ctx.Err() == nil {
				return fmt.Errorf("kiosk stopped: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "override the pause before each reply (e.g. 0s, 500ms)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "print replies at once instead of pacing them")

	return cmd
}
