package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/cloudsync"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/config"
	"github.com/Veraticus/household-ledger/internal/model"
)

// editableSettings are the keys users may set; lastSynced is owned by sync.
var editableSettings = map[string]string{
	model.SettingUser:    "household member recorded as payer by default",
	model.SettingSyncURL: "Apps Script web app URL used by sync",
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change ledger settings",
	}

	cmd.AddCommand(getSettingCmd())
	cmd.AddCommand(setSettingCmd())

	return cmd
}

func getSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			keys := []string{model.SettingUser, model.SettingSyncURL, model.SettingLastSynced}
			if len(args) == 1 {
				keys = args
			}

			for _, key := range keys {
				value, ok, err := store.GetSetting(ctx, key)
				if err != nil {
					return err
				}
				if !ok {
					value = cli.MutedStyle.Render("(unset)")
				}
				printf(cmd, "%s = %s\n", key, value)
			}
			return nil
		},
	}
}

func setSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long:  "Change a setting. Keys:\n" + settingKeysHelp(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, value := args[0], strings.TrimSpace(args[1])

			if _, ok := editableSettings[key]; !ok {
				return common.NewUserError(fmt.Sprintf("unknown setting %q; keys are:\n%s", key, settingKeysHelp()), nil)
			}

			switch key {
			case model.SettingSyncURL:
				if value != "" {
					if _, err := cloudsync.NewHTTPEndpoint(value, 0); err != nil {
						return common.NewUserError("the sync URL must be an http or https URL", err)
					}
				}
			case model.SettingUser:
				warnUnknownMember(cmd, value)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.PutSetting(ctx, key, value); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%s = %s", key, value)))
			return nil
		},
	}
}

func warnUnknownMember(cmd *cobra.Command, name string) {
	members := config.HouseholdMembers()
	if len(members) == 0 {
		return
	}
	for _, m := range members {
		if m == name {
			return
		}
	}
	printLine(cmd, cli.FormatWarning(fmt.Sprintf("%q is not one of household.members (%s)", name, strings.Join(members, ", "))))
}

func settingKeysHelp() string {
	keys := make([]string, 0, len(editableSettings))
	for k := range editableSettings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-16s %s\n", k, editableSettings[k])
	}
	return b.String()
}
