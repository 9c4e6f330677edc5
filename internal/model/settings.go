package model

import "time"

// Setting keys stored in the key/value settings table.
const (
	SettingUser       = "user"
	SettingSyncURL    = "googleScriptUrl"
	SettingLastSynced = "lastSynced"
)

// Settings is the typed view of the settings table.
type Settings struct {
	LastSynced *time.Time
	User       string // Active household member
	SyncURL    string // Remote sync endpoint
}
