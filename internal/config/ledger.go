package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/recurrence"
	"github.com/spf13/viper"
)

// Defaults for keys that are not required in the config file.
const (
	DefaultDatabasePath = "$HOME/.local/share/ledger/ledger.db"
	DefaultSyncTimeout  = 10 * time.Second
	DefaultTimezone     = "UTC"
)

// SetDefaults registers default values with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("sync.timeout", DefaultSyncTimeout)
	v.SetDefault("sync.timezone", DefaultTimezone)
	v.SetDefault("recurring.auto_project", true)
	v.SetDefault("recurring.max_catch_up", recurrence.DefaultMaxCatchUp)
}

// DatabasePath returns the expanded path of the SQLite database.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// SyncConfig controls the remote sync endpoint.
type SyncConfig struct {
	Location *time.Location
	URL      string
	Timeout  time.Duration
}

// LoadSyncConfig reads sync.* keys.
func LoadSyncConfig() (SyncConfig, error) {
	cfg := SyncConfig{
		URL:     strings.TrimSpace(viper.GetString("sync.url")),
		Timeout: viper.GetDuration("sync.timeout"),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSyncTimeout
	}

	loc, err := LoadLocation(viper.GetString("sync.timezone"))
	if err != nil {
		return SyncConfig{}, err
	}
	cfg.Location = loc
	return cfg, nil
}

// LoadLocation resolves an IANA zone name; empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}

// RecurringConfig controls automatic projection of recurring expenses.
type RecurringConfig struct {
	AutoProject bool
	MaxCatchUp  int
}

// LoadRecurringConfig reads recurring.* keys.
func LoadRecurringConfig() RecurringConfig {
	cfg := RecurringConfig{
		AutoProject: true,
		MaxCatchUp:  recurrence.DefaultMaxCatchUp,
	}
	if viper.IsSet("recurring.auto_project") {
		cfg.AutoProject = viper.GetBool("recurring.auto_project")
	}
	if n := viper.GetInt("recurring.max_catch_up"); n > 0 {
		cfg.MaxCatchUp = n
	}
	return cfg
}

// HouseholdMembers returns the configured names offered for "paid by".
func HouseholdMembers() []string {
	var members []string
	for _, m := range viper.GetStringSlice("household.members") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}
