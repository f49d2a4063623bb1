package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

// Validation ranges for the timer durations, in minutes.
const (
	MinFocusDuration     = 5
	MaxFocusDuration     = 90
	MinBreakDuration     = 1
	MaxBreakDuration     = 30
	MinLongBreakDuration = 5
	MaxLongBreakDuration = 60
	MinPomodorosUntilLB  = 2
	MaxPomodorosUntilLB  = 8
)

// Settings is the per-user timer configuration singleton. It is created
// lazily with defaults on first access and fully replaced on reset.
type Settings struct {
	UserID                  uuid.UUID
	FocusDuration           int
	BreakDuration           int
	LongBreakDuration       int
	PomodorosUntilLongBreak int
	AutoStartBreak          bool
	AutoStartFocus          bool
	SoundEnabled            bool
	VibrationEnabled        bool
	UpdatedAt               time.Time
}

// DefaultSettings returns the factory configuration for a user.
func DefaultSettings(userID uuid.UUID) *Settings {
	return &Settings{
		UserID:                  userID,
		FocusDuration:           25,
		BreakDuration:           5,
		LongBreakDuration:       15,
		PomodorosUntilLongBreak: 4,
		AutoStartBreak:          false,
		AutoStartFocus:          false,
		SoundEnabled:            true,
		VibrationEnabled:        true,
		UpdatedAt:               time.Now().UTC(),
	}
}

// Validate checks every range bound.
func (s *Settings) Validate() error {
	if s.FocusDuration < MinFocusDuration || s.FocusDuration > MaxFocusDuration {
		return sharedDomain.Validationf("focus duration must be between %d and %d minutes", MinFocusDuration, MaxFocusDuration)
	}
	if s.BreakDuration < MinBreakDuration || s.BreakDuration > MaxBreakDuration {
		return sharedDomain.Validationf("break duration must be between %d and %d minutes", MinBreakDuration, MaxBreakDuration)
	}
	if s.LongBreakDuration < MinLongBreakDuration || s.LongBreakDuration > MaxLongBreakDuration {
		return sharedDomain.Validationf("long break duration must be between %d and %d minutes", MinLongBreakDuration, MaxLongBreakDuration)
	}
	if s.PomodorosUntilLongBreak < MinPomodorosUntilLB || s.PomodorosUntilLongBreak > MaxPomodorosUntilLB {
		return sharedDomain.Validationf("pomodoros until long break must be between %d and %d", MinPomodorosUntilLB, MaxPomodorosUntilLB)
	}
	return nil
}

// SettingsUpdate carries a partial update; nil fields are left alone.
type SettingsUpdate struct {
	FocusDuration           *int
	BreakDuration           *int
	LongBreakDuration       *int
	PomodorosUntilLongBreak *int
	AutoStartBreak          *bool
	AutoStartFocus          *bool
	SoundEnabled            *bool
	VibrationEnabled        *bool
}

// Apply patches the settings and validates the result.
func (s *Settings) Apply(update SettingsUpdate, now time.Time) error {
	if update.FocusDuration != nil {
		s.FocusDuration = *update.FocusDuration
	}
	if update.BreakDuration != nil {
		s.BreakDuration = *update.BreakDuration
	}
	if update.LongBreakDuration != nil {
		s.LongBreakDuration = *update.LongBreakDuration
	}
	if update.PomodorosUntilLongBreak != nil {
		s.PomodorosUntilLongBreak = *update.PomodorosUntilLongBreak
	}
	if update.AutoStartBreak != nil {
		s.AutoStartBreak = *update.AutoStartBreak
	}
	if update.AutoStartFocus != nil {
		s.AutoStartFocus = *update.AutoStartFocus
	}
	if update.SoundEnabled != nil {
		s.SoundEnabled = *update.SoundEnabled
	}
	if update.VibrationEnabled != nil {
		s.VibrationEnabled = *update.VibrationEnabled
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.UpdatedAt = now.UTC()
	return nil
}
