package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/recurrence"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_TEST_DIR", "/srv/ledger")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "home", in: "~", want: home},
		{name: "under home", in: "~/data/ledger.db", want: filepath.Join(home, "data/ledger.db")},
		{name: "env var", in: "$LEDGER_TEST_DIR/ledger.db", want: "/srv/ledger/ledger.db"},
		{name: "absolute", in: "/tmp/ledger.db", want: "/tmp/ledger.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestConfigLocations(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "ledger"), dir)

	file, err := DefaultConfigFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), file)

	token, err := SheetsTokenFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "xdg", "ledger", "sheets-token.json"), token)
}

func TestDatabasePath(t *testing.T) {
	resetViper(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/ledger/ledger.db"), DatabasePath())

	viper.Set("database.path", "/tmp/other.db")
	assert.Equal(t, "/tmp/other.db", DatabasePath())
}

func TestLoadSyncConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		resetViper(t)

		cfg, err := LoadSyncConfig()
		require.NoError(t, err)
		assert.Empty(t, cfg.URL)
		assert.Equal(t, DefaultSyncTimeout, cfg.Timeout)
		assert.Equal(t, time.UTC, cfg.Location)
	})

	t.Run("configured", func(t *testing.T) {
		resetViper(t)
		viper.Set("sync.url", " https://script.google.com/macros/s/abc/exec ")
		viper.Set("sync.timeout", "30s")
		viper.Set("sync.timezone", "Asia/Dhaka")

		cfg, err := LoadSyncConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://script.google.com/macros/s/abc/exec", cfg.URL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, "Asia/Dhaka", cfg.Location.String())
	})

	t.Run("bad timezone", func(t *testing.T) {
		resetViper(t)
		viper.Set("sync.timezone", "Mars/Olympus")

		_, err := LoadSyncConfig()
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestLoadRecurringConfig(t *testing.T) {
	resetViper(t)

	cfg := LoadRecurringConfig()
	assert.True(t, cfg.AutoProject)
	assert.Equal(t, recurrence.DefaultMaxCatchUp, cfg.MaxCatchUp)

	viper.Set("recurring.auto_project", false)
	viper.Set("recurring.max_catch_up", 12)
	cfg = LoadRecurringConfig()
	assert.False(t, cfg.AutoProject)
	assert.Equal(t, 12, cfg.MaxCatchUp)
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, DefaultDatabasePath, v.GetString("database.path"))
	assert.Equal(t, DefaultSyncTimeout, v.GetDuration("sync.timeout"))
	assert.True(t, v.GetBool("recurring.auto_project"))
	assert.Equal(t, "console", v.GetString("logging.format"))
}

func TestHouseholdMembers(t *testing.T) {
	resetViper(t)
	assert.Empty(t, HouseholdMembers())

	viper.Set("household.members", []string{"Sam", " ", " Alex "})
	assert.Equal(t, []string{"Sam", "Alex"}, HouseholdMembers())
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, env := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(env, "")
	}

	t.Run("defaults", func(t *testing.T) {
		resetViper(t)

		cfg := LoadSheetsConfig()
		assert.Equal(t, "Household Budget", cfg.SpreadsheetName)
		assert.Equal(t, "UTC", cfg.TimeZone)
		assert.False(t, cfg.HasAuth())
	})

	t.Run("viper wins over environment", func(t *testing.T) {
		resetViper(t)
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-client")
		viper.Set("sheets.spreadsheet_id", "from-config")
		viper.Set("sheets.spreadsheet_name", "Our Budget")
		viper.Set("sync.timezone", "Asia/Dhaka")

		cfg := LoadSheetsConfig()
		assert.Equal(t, "from-config", cfg.SpreadsheetID)
		assert.Equal(t, "env-client", cfg.ClientID)
		assert.Equal(t, "Our Budget", cfg.SpreadsheetName)
		assert.Equal(t, "Asia/Dhaka", cfg.TimeZone)
	})

	t.Run("service account path expanded", func(t *testing.T) {
		resetViper(t)
		t.Setenv("LEDGER_TEST_DIR", "/etc/ledger")
		viper.Set("sheets.service_account_path", "$LEDGER_TEST_DIR/sa.json")

		cfg := LoadSheetsConfig()
		assert.Equal(t, "/etc/ledger/sa.json", cfg.ServiceAccountPath)
		assert.True(t, cfg.HasAuth())
	})
}
