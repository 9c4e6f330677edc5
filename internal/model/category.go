package model

import "github.com/shopspring/decimal"

// CategoryBudget is a spending category with its monthly ceiling.
// Category is unique and acts as the key.
type CategoryBudget struct {
	Category    string
	GroupName   string
	Icon        string
	LimitAmount decimal.Decimal
}

// DefaultCategoryBudgets returns the budgets seeded into an empty ledger.
func DefaultCategoryBudgets() []CategoryBudget {
	return []CategoryBudget{
		{Category: "Monthly Rent", GroupName: "HOUSING", LimitAmount: decimal.NewFromInt(15000), Icon: "🏠"},
		{Category: "Service Charge / Maintenance", GroupName: "HOUSING", LimitAmount: decimal.NewFromInt(3000), Icon: "🛠️"},
		{Category: "Electricity / Gas / Water", GroupName: "HOUSING", LimitAmount: decimal.NewFromInt(3000), Icon: "⚡"},
		{Category: "Sinking Fund (Building Repair)", GroupName: "HOUSING", LimitAmount: decimal.NewFromInt(1000), Icon: "🏗️"},
		{Category: "Office Commute", GroupName: "TRANSPORT", LimitAmount: decimal.NewFromInt(6000), Icon: "🚌"},
		{Category: "School Transport", GroupName: "TRANSPORT", LimitAmount: decimal.NewFromInt(3000), Icon: "🚌"},
		{Category: "Car Maintenance / Driver", GroupName: "TRANSPORT", LimitAmount: decimal.NewFromInt(5000), Icon: "🔧"},
		{Category: "Personal", GroupName: "PERSONAL", LimitAmount: decimal.NewFromInt(5000), Icon: "👤"},
		{Category: "Baby Care", GroupName: "PERSONAL", LimitAmount: decimal.NewFromInt(5000), Icon: "👶"},
		{Category: "Groceries & Food", GroupName: "LIVING", LimitAmount: decimal.NewFromInt(10000), Icon: "🛒"},
		{Category: "Household Help", GroupName: "LIVING", LimitAmount: decimal.NewFromInt(4000), Icon: "🧹"},
		{Category: "Internet / Phone / Subscriptions", GroupName: "LIVING", LimitAmount: decimal.NewFromInt(2000), Icon: "📶"},
		{Category: "Family Hangout", GroupName: "LIVING", LimitAmount: decimal.NewFromInt(4000), Icon: "🎉"},
		{Category: "Other", GroupName: "OTHERS", LimitAmount: decimal.NewFromInt(2000), Icon: "📦"},
	}
}
