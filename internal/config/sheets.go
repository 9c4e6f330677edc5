package config

import (
	"github.com/Veraticus/household-ledger/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration. Values under sheets.*
// in viper win over GOOGLE_SHEETS_* environment variables, which win over
// defaults. The result is not validated; callers validate when they are
// about to use it.
func LoadSheetsConfig() sheets.Config {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	config.SpreadsheetName = viper.GetString("sheets.spreadsheet_name")

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if config.SpreadsheetName == "" {
		config.SpreadsheetName = sheets.DefaultConfig().SpreadsheetName
	}
	if tz := viper.GetString("sync.timezone"); tz != "" {
		config.TimeZone = tz
	}
	if n := viper.GetInt("sheets.batch_size"); n > 0 {
		config.BatchSize = n
	}
	return config
}
