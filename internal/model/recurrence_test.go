package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    Frequency
		wantErr bool
	}{
		{input: "weekly", want: FrequencyWeekly},
		{input: " Monthly ", want: FrequencyMonthly},
		{input: "yearly", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFrequency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecurrence_Validate(t *testing.T) {
	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		recurrence *Recurrence
		name       string
		wantErr    bool
	}{
		{name: "nil", recurrence: nil},
		{name: "active template", recurrence: &Recurrence{Frequency: FrequencyMonthly, NextDue: &due, Active: true}},
		{name: "generated instance", recurrence: &Recurrence{Frequency: FrequencyWeekly}},
		{name: "active without next due", recurrence: &Recurrence{Frequency: FrequencyWeekly, Active: true}, wantErr: true},
		{name: "inactive with next due", recurrence: &Recurrence{Frequency: FrequencyWeekly, NextDue: &due}, wantErr: true},
		{name: "active with bad frequency", recurrence: &Recurrence{Frequency: "daily", NextDue: &due, Active: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recurrence.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_Instance(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tmpl := Transaction{
		ID:         "tmpl-1",
		Date:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Item:       "Rent",
		Category:   "Monthly Rent",
		Amount:     decimal.NewFromInt(15000),
		PaidBy:     "Sam",
		Notes:      "landlord",
		Recurrence: &Recurrence{Frequency: FrequencyMonthly, NextDue: &due, Active: true},
	}
	require.True(t, tmpl.IsTemplate())

	inst := tmpl.Instance(due)

	assert.NotEmpty(t, inst.ID)
	assert.NotEqual(t, tmpl.ID, inst.ID)
	assert.Equal(t, due, inst.Date)
	assert.Equal(t, "Rent", inst.Item)
	assert.Equal(t, "Monthly Rent", inst.Category)
	assert.True(t, tmpl.Amount.Equal(inst.Amount))
	assert.Equal(t, "Sam", inst.PaidBy)
	assert.Equal(t, "landlord", inst.Notes)
	assert.Nil(t, inst.Recurrence)
	assert.False(t, inst.IsTemplate())
}
