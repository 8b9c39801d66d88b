package kiosk

import (
	"context"

	"github.com/soyeahso/frontdesk/internal/dialogue"
	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/hooks"
	"github.com/soyeahso/frontdesk/internal/store"
)

// commit applies the side effects a reply asks for. Store failures are
// logged and counted; the conversation carries on either way.
func (k *Kiosk) commit(ctx context.Context, chatID string, prev, next domain.SessionState, reply dialogue.Reply) {
	if reply.Match != nil {
		k.metrics.ObserveMatch(string(reply.Match.Tier))
	} else if prev.Stage == domain.StageAskDoctor {
		k.metrics.ObserveMatch("")
	}

	if reply.ClearStore {
		err := k.tokens.Clear(ctx)
		k.metrics.ObserveStore("clear", err)
		if err != nil {
			k.log.Warn().Err(err).Msg("clearing token store")
		}
		if k.presenter != nil {
			k.presenter.Cleared()
		}
		k.hooks.Emit(ctx, hooks.EventTokenCleared, nil)
	}

	if reply.SaveToken != nil {
		rec := *reply.SaveToken
		err := k.tokens.Save(ctx, rec)
		k.metrics.ObserveStore("save", err)
		if err != nil {
			k.log.Warn().Err(err).Str("token", rec.Code).Msg("saving token")
		}
		k.metrics.ObserveTokenIssued(rec.Doctor.Specialty)
		k.log.Info().Str("token", rec.Code).Str("doctor", rec.Doctor.Name).Msg("token issued")

		if k.chatLog != nil && chatID != "" {
			if err := k.chatLog.AttachPatient(ctx, chatID, rec.Patient); err != nil {
				k.log.Warn().Err(err).Msg("recording patient in chat log")
			}
		}
		k.hooks.Emit(ctx, hooks.EventTokenIssued, tokenData(rec))
		k.tokenUpdated(ctx, rec)
	}

	if reply.RevealToken && next.Token != nil {
		rec := *next.Token
		k.metrics.ObserveReveal()
		if k.presenter != nil {
			if err := k.presenter.Reveal(rec); err != nil {
				k.log.Warn().Err(err).Msg("showing token")
			}
		}
		k.hooks.Emit(ctx, hooks.EventTokenRevealed, tokenData(rec))
	}
}

func (k *Kiosk) tokenUpdated(_ context.Context, rec domain.TokenRecord) {
	if k.presenter != nil {
		k.presenter.TokenUpdated(rec, rec.Doctor.String())
	}
}

// say speaks text and publishes it as an utterance.
func (k *Kiosk) say(ctx context.Context, text string) {
	k.hooks.Emit(context.WithoutCancel(ctx), hooks.EventUtterance, map[string]any{"text": text})
	if k.speaker == nil {
		return
	}
	k.speaker.Cancel()
	if err := k.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		k.log.Debug().Err(err).Msg("speech output interrupted")
	}
}

func (k *Kiosk) audit(ctx context.Context, chatID string, role store.ChatRole, text string) {
	if k.chatLog == nil || chatID == "" {
		return
	}
	if _, err := k.chatLog.AppendMessage(ctx, chatID, role, text); err != nil {
		k.log.Warn().Err(err).Msg("appending to chat log")
	}
}

func tokenData(rec domain.TokenRecord) map[string]any {
	return map[string]any{
		"token":     rec.Code,
		"doctor":    rec.Doctor.Name,
		"specialty": rec.Doctor.Specialty,
		"issuedAt":  rec.IssuedAt,
	}
}
