package models

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

type ExportQuality string

const (
	QualityLow    ExportQuality = "low"
	QualityMedium ExportQuality = "medium"
	QualityHigh   ExportQuality = "high"
)

func (q ExportQuality) Valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// PreferenceSet is the stored, possibly partial, preference row of an
// account. Nil fields were never set.
type PreferenceSet struct {
	AccountID          int64          `json:"accountId"`
	Theme              *Theme         `json:"theme,omitempty"`
	ExportQuality      *ExportQuality `json:"exportQuality,omitempty"`
	AutoSave           *bool          `json:"autoSave,omitempty"`
	EmailNotifications *bool          `json:"emailNotifications,omitempty"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// PreferencePatch is a partial update. Nil fields keep the stored value.
type PreferencePatch struct {
	Theme              *Theme         `json:"theme,omitempty"`
	ExportQuality      *ExportQuality `json:"exportQuality,omitempty"`
	AutoSave           *bool          `json:"autoSave,omitempty"`
	EmailNotifications *bool          `json:"emailNotifications,omitempty"`
}

// Preferences is a fully resolved preference set.
type Preferences struct {
	Theme              Theme
	ExportQuality      ExportQuality
	AutoSave           bool
	EmailNotifications bool
}

// DefaultPreferences applies when an account has not stored a value.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              ThemeSystem,
		ExportQuality:      QualityHigh,
		AutoSave:           true,
		EmailNotifications: true,
	}
}

// Merge applies p on top of s and returns the result; s is not modified.
func (s PreferenceSet) Merge(p PreferencePatch) PreferenceSet {
	if p.Theme != nil {
		s.Theme = p.Theme
	}
	if p.ExportQuality != nil {
		s.ExportQuality = p.ExportQuality
	}
	if p.AutoSave != nil {
		s.AutoSave = p.AutoSave
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = p.EmailNotifications
	}
	return s
}

// Resolve fills unset fields from DefaultPreferences.
func (s PreferenceSet) Resolve() Preferences {
	out := DefaultPreferences()
	if s.Theme != nil {
		out.Theme = *s.Theme
	}
	if s.ExportQuality != nil {
		out.ExportQuality = *s.ExportQuality
	}
	if s.AutoSave != nil {
		out.AutoSave = *s.AutoSave
	}
	if s.EmailNotifications != nil {
		out.EmailNotifications = *s.EmailNotifications
	}
	return out
}
