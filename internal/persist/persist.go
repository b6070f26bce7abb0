package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/storage"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

// Load reads every key on its own. A key that is missing, unreadable or not
// valid JSON falls back to its default; Load never fails.
func Load(ctx context.Context, kv storage.Store, keys Keys, logger *zap.Logger) tracker.State {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := tracker.DefaultState()

	settings := tracker.DefaultSettings()
	if readKey(ctx, kv, keys.Settings, &settings, logger) {
		state.Settings = settings
	}

	var roster []combatant.Combatant
	if readKey(ctx, kv, keys.Roster, &roster, logger) && roster != nil {
		state.Roster = roster
	}

	var graveyard []combatant.Fallen
	if readKey(ctx, kv, keys.Graveyard, &graveyard, logger) && graveyard != nil {
		state.Graveyard = graveyard
	}

	var activeID string
	if readKey(ctx, kv, keys.ActiveID, &activeID, logger) {
		state.ActiveID = activeID
	}

	var round int
	if readKey(ctx, kv, keys.Round, &round, logger) {
		if round >= 1 {
			state.Round = round
		} else {
			logger.Warn("stored round out of range, using default",
				zap.String("key", keys.Round),
				zap.Int("round", round),
			)
		}
	}

	return state
}

func readKey(ctx context.Context, kv storage.Store, key string, target any, logger *zap.Logger) bool {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		logger.Warn("failed to read stored value, using default",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		logger.Warn("stored value is malformed, using default",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Save writes all five keys. Every key is attempted; the errors are joined.
func Save(ctx context.Context, kv storage.Store, keys Keys, s tracker.State) error {
	roster := s.Roster
	if roster == nil {
		roster = []combatant.Combatant{}
	}
	graveyard := s.Graveyard
	if graveyard == nil {
		graveyard = []combatant.Fallen{}
	}

	values := []struct {
		key   string
		value any
	}{
		{keys.Settings, s.Settings},
		{keys.Roster, roster},
		{keys.Graveyard, graveyard},
		{keys.ActiveID, s.ActiveID},
		{keys.Round, s.Round},
	}

	var errs []error
	for _, v := range values {
		payload, err := json.Marshal(v.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", v.key, err))
			continue
		}
		if err := kv.Set(ctx, v.key, string(payload)); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", v.key, err))
		}
	}
	return errors.Join(errs...)
}
