package moderation

import (
	"testing"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactivateAtNamedDurations(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := map[string]time.Duration{
		"1d":  24 * time.Hour,
		"3d":  3 * 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"14d": 14 * 24 * time.Hour,
		"30d": 30 * 24 * time.Hour,
	}
	for token, d := range cases {
		at, err := ReactivateAt(token, now)
		require.NoError(t, err, token)
		require.NotNil(t, at, token)
		assert.Equal(t, now.Add(d), *at, token)
	}
}

func TestReactivateAtPermanent(t *testing.T) {
	at, err := ReactivateAt(DurationPermanent, time.Now())
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestReactivateAtCustomTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	at, err := ReactivateAt("2025-07-15T00:00:00Z", now)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, 2025, at.Year())
	assert.Equal(t, time.July, at.Month())

	// Without a zone suffix the bare layout is accepted too.
	at, err = ReactivateAt("2025-07-15T08:30:00", now)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, 8, at.Hour())
}

func TestReactivateAtRejectsPastAndGarbage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := ReactivateAt("2020-01-01T00:00:00Z", now)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ReactivateAt("2w", now)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ReactivateAt("", now)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestDeactivateStampsUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := &models.User{ID: 9, Status: models.UserActive}

	err := Deactivate(u, []string{"spam", "abusive listings"}, "7d", 1, now)
	require.NoError(t, err)

	assert.Equal(t, models.UserInactive, u.Status)
	assert.Equal(t, models.StringList{"spam", "abusive listings"}, u.DeactivationReasons)
	assert.Equal(t, "7d", u.DeactivationDuration)
	assert.Equal(t, uint(1), u.DeactivatedBy)
	require.NotNil(t, u.ReactivateAt)
	assert.Equal(t, now.Add(7*24*time.Hour), *u.ReactivateAt)
	assert.Nil(t, u.ReactivatedAt)
}

func TestDeactivatePermanent(t *testing.T) {
	now := time.Now()
	u := &models.User{ID: 9, Status: models.UserActive}

	err := Deactivate(u, nil, DurationPermanent, 1, now)
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, u.Status)
	assert.Nil(t, u.ReactivateAt)
}

func TestDeactivateInvalidDurationLeavesUserUntouched(t *testing.T) {
	u := &models.User{ID: 9, Status: models.UserActive}

	err := Deactivate(u, nil, "soon", 1, time.Now())
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Equal(t, models.UserActive, u.Status)
}

func TestReactivateClearsModeration(t *testing.T) {
	now := time.Now()
	u := &models.User{ID: 9, Status: models.UserActive}
	require.NoError(t, Deactivate(u, []string{"spam"}, "1d", 1, now))

	later := now.Add(time.Hour)
	Reactivate(u, later)

	assert.Equal(t, models.UserActive, u.Status)
	assert.Nil(t, u.DeactivationReasons)
	assert.Empty(t, u.DeactivationDuration)
	assert.Nil(t, u.DeactivatedAt)
	assert.Zero(t, u.DeactivatedBy)
	assert.Nil(t, u.ReactivateAt)
	require.NotNil(t, u.ReactivatedAt)
	assert.Equal(t, later, *u.ReactivatedAt)
}

func TestMaybeReactivate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	u := &models.User{ID: 9, Status: models.UserActive}
	require.NoError(t, Deactivate(u, nil, "1d", 1, now))

	// Ban still running.
	assert.False(t, MaybeReactivate(u, now.Add(time.Hour)))
	assert.Equal(t, models.UserInactive, u.Status)

	// Ban lapsed.
	assert.True(t, MaybeReactivate(u, now.Add(25*time.Hour)))
	assert.Equal(t, models.UserActive, u.Status)

	// Already active: no-op.
	assert.False(t, MaybeReactivate(u, now.Add(48*time.Hour)))
}

func TestMaybeReactivateSkipsPermanentBan(t *testing.T) {
	now := time.Now()
	u := &models.User{ID: 9, Status: models.UserActive}
	require.NoError(t, Deactivate(u, nil, DurationPermanent, 1, now))

	assert.False(t, MaybeReactivate(u, now.Add(10000*time.Hour)))
	assert.Equal(t, models.UserInactive, u.Status)
}
