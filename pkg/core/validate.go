// pkg/core/validate.go
package core

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is wrapped by every error returned from Validate.
var ErrInvalidSnapshot = errors.New("invalid frame snapshot")

// Validate checks the structural contract of a two-camp frame: exactly two
// heroes in distinct playable camps and no repeated player or runtime ids.
// Organs may belong to no camp.
func (s *FrameSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if s.FrameNo < 0 {
		return fmt.Errorf("%w: negative frame number %d", ErrInvalidSnapshot, s.FrameNo)
	}
	if len(s.Heroes) != 2 {
		return fmt.Errorf("%w: expected 2 heroes, got %d", ErrInvalidSnapshot, len(s.Heroes))
	}

	players := make(map[int64]struct{}, len(s.Heroes))
	runtimes := make(map[int64]struct{}, len(s.Heroes)+len(s.Organs))
	camps := make(map[Camp]struct{}, 2)
	for _, h := range s.Heroes {
		if !h.Camp.Valid() {
			return fmt.Errorf("%w: hero %d has unknown camp %d", ErrInvalidSnapshot, h.PlayerID, int(h.Camp))
		}
		if _, dup := camps[h.Camp]; dup {
			return fmt.Errorf("%w: both heroes in %s", ErrInvalidSnapshot, h.Camp)
		}
		camps[h.Camp] = struct{}{}

		if _, dup := players[h.PlayerID]; dup {
			return fmt.Errorf("%w: duplicate player id %d", ErrInvalidSnapshot, h.PlayerID)
		}
		players[h.PlayerID] = struct{}{}

		if h.RuntimeID != 0 {
			if _, dup := runtimes[h.RuntimeID]; dup {
				return fmt.Errorf("%w: duplicate runtime id %d", ErrInvalidSnapshot, h.RuntimeID)
			}
			runtimes[h.RuntimeID] = struct{}{}
		}
	}

	for _, o := range s.Organs {
		if o.RuntimeID == 0 {
			continue
		}
		if _, dup := runtimes[o.RuntimeID]; dup {
			return fmt.Errorf("%w: duplicate runtime id %d", ErrInvalidSnapshot, o.RuntimeID)
		}
		runtimes[o.RuntimeID] = struct{}{}
	}
	return nil
}

// Hero returns the hero controlled by playerID, or nil.
func (s *FrameSnapshot) Hero(playerID int64) *HeroState {
	if s == nil {
		return nil
	}
	for i := range s.Heroes {
		if s.Heroes[i].PlayerID == playerID {
			return &s.Heroes[i]
		}
	}
	return nil
}
