// Package moderation implements the account deactivation lifecycle: an admin
// sets a duration, we compute reactivate_at, and any later authenticated
// request flips the account back to active once the ban has lapsed. The check
// is opportunistic (check-on-access), not a scheduled sweep, so a user who
// never returns stays inactive past their reactivate_at until their next call.
package moderation

import (
	"errors"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"
)

const DurationPermanent = "permanent"

var ErrInvalidDuration = errors.New("invalid deactivation duration")

var namedDurations = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"3d":  3 * 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"14d": 14 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// ReactivateAt resolves a duration token to the reactivation timestamp.
// Recognized tokens are 1d/3d/7d/14d/30d; "permanent" yields nil; anything
// else must parse as a future ISO timestamp.
func ReactivateAt(duration string, now time.Time) (*time.Time, error) {
	if duration == DurationPermanent {
		return nil, nil
	}
	if d, ok := namedDurations[duration]; ok {
		at := now.Add(d)
		return &at, nil
	}

	at, err := time.Parse(time.RFC3339, duration)
	if err != nil {
		at, err = time.Parse("2006-01-02T15:04:05", duration)
	}
	if err != nil || !at.After(now) {
		return nil, ErrInvalidDuration
	}
	return &at, nil
}

// Deactivate stamps the user inactive with the given reasons and duration.
func Deactivate(u *models.User, reasons []string, duration string, adminID uint, now time.Time) error {
	at, err := ReactivateAt(duration, now)
	if err != nil {
		return err
	}
	u.Status = models.UserInactive
	u.DeactivationReasons = reasons
	u.DeactivationDuration = duration
	u.DeactivatedAt = &now
	u.DeactivatedBy = adminID
	u.ReactivateAt = at
	u.ReactivatedAt = nil
	return nil
}

// Reactivate flips the user back to active and clears the moderation fields.
func Reactivate(u *models.User, now time.Time) {
	u.Status = models.UserActive
	u.DeactivationReasons = nil
	u.DeactivationDuration = ""
	u.DeactivatedAt = nil
	u.DeactivatedBy = 0
	u.ReactivateAt = nil
	u.ReactivatedAt = &now
}

// MaybeReactivate applies the check-on-access rule: if the user is inactive
// with a lapsed timed ban, flip them active in memory and report the change
// so the caller can persist it.
func MaybeReactivate(u *models.User, now time.Time) bool {
	if u.Status != models.UserInactive || u.ReactivateAt == nil {
		return false
	}
	if now.Before(*u.ReactivateAt) {
		return false
	}
	Reactivate(u, now)
	return true
}
