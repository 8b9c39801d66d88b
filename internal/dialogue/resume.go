package dialogue

import (
	"context"
	"errors"

	"github.com/soyeahso/frontdesk/internal/directory"
	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/logging"
	"github.com/soyeahso/frontdesk/internal/store"
)

// ResumeOutcome describes how Resume built the starting session.
type ResumeOutcome string

const (
	// ResumeFresh means the store was empty.
	ResumeFresh ResumeOutcome = "fresh"
	// ResumeRestored means a stored token was picked up.
	ResumeRestored ResumeOutcome = "restored"
	// ResumeDiscarded means stored data was unusable and the slot was cleared.
	ResumeDiscarded ResumeOutcome = "discarded"
	// ResumeUnavailable means the store could not be read. The slot is left
	// alone so a later start can try again.
	ResumeUnavailable ResumeOutcome = "unavailable"
)

// Resume builds the starting session from the token store. A stored record
// goes straight to MAIN_CONVERSATION; anything else starts at GREETING.
// Errors are logged, never returned.
func Resume(ctx context.Context, ts store.TokenStore, dir *directory.Directory, log *logging.Logger) (domain.SessionState, ResumeOutcome) {
	fresh := domain.NewSessionState()

	rec, err := ts.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return fresh, ResumeFresh
	case errors.Is(err, domain.ErrCorruptRecord):
		log.Warn().Err(err).Msg("discarding unreadable token record")
		discard(ctx, ts, log)
		return fresh, ResumeDiscarded
	default:
		log.Warn().Err(err).Msg("token store unavailable, starting fresh")
		return fresh, ResumeUnavailable
	}

	if !dir.Contains(rec.Doctor) {
		log.Warn().Str("doctor", rec.Doctor.Name).Msg("stored token names an unknown doctor, discarding")
		discard(ctx, ts, log)
		return fresh, ResumeDiscarded
	}

	doctor := rec.Doctor
	s := domain.SessionState{
		Stage:          domain.StageMainConversation,
		Patient:        rec.Patient,
		SelectedDoctor: &doctor,
		Token:          &rec,
	}
	log.Info().Str("token", rec.Code).Msg("resumed stored token")
	return s, ResumeRestored
}

func discard(ctx context.Context, ts store.TokenStore, log *logging.Logger) {
	if err := ts.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("clearing token store")
	}
}
