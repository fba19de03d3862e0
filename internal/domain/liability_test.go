package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLiability_Validate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	remaining := decimal.NewFromInt(50000)
	tooMuch := decimal.NewFromInt(200000)

	tests := []struct {
		name      string
		liability Liability
		wantErr   bool
		errMsg    string
	}{
		{
			name: "Complete mortgage should pass",
			liability: Liability{
				ID:             uuid.New(),
				UserID:         uuid.New(),
				Name:           "Mortgage",
				TotalAmount:    decimal.NewFromInt(120000),
				InterestRate:   decimal.NewFromInt(5),
				LoanTermMonths: 120,
				StartDate:      &start,
				LoanMethod:     LoanMethodSpitzer,
			},
			wantErr: false,
		},
		{
			name: "Missing name should fail",
			liability: Liability{
				ID:          uuid.New(),
				UserID:      uuid.New(),
				TotalAmount: decimal.NewFromInt(1000),
			},
			wantErr: true,
			errMsg:  "liability name cannot be empty",
		},
		{
			name: "Missing owner should fail",
			liability: Liability{
				ID:          uuid.New(),
				Name:        "Car loan",
				TotalAmount: decimal.NewFromInt(1000),
			},
			wantErr: true,
			errMsg:  "liability must belong to a user",
		},
		{
			name: "Unknown loan method should fail",
			liability: Liability{
				ID:          uuid.New(),
				UserID:      uuid.New(),
				Name:        "Car loan",
				TotalAmount: decimal.NewFromInt(1000),
				LoanMethod:  "BALLOON",
			},
			wantErr: true,
			errMsg:  "loan method must be SPITZER or EQUAL_PRINCIPAL",
		},
		{
			name: "Remaining amount above the principal should fail",
			liability: Liability{
				ID:              uuid.New(),
				UserID:          uuid.New(),
				Name:            "Mortgage",
				TotalAmount:     decimal.NewFromInt(120000),
				RemainingAmount: &tooMuch,
			},
			wantErr: true,
			errMsg:  "remaining amount must be between zero and the total amount",
		},
		{
			name: "Manual remaining amount inside the principal should pass",
			liability: Liability{
				ID:              uuid.New(),
				UserID:          uuid.New(),
				Name:            "Family loan",
				TotalAmount:     decimal.NewFromInt(120000),
				RemainingAmount: &remaining,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.liability.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLiability_HasSchedule(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	full := Liability{
		InterestRate:   decimal.NewFromInt(5),
		LoanTermMonths: 120,
		StartDate:      &start,
	}
	assert.True(t, full.HasSchedule())

	noRate := full
	noRate.InterestRate = decimal.Zero
	assert.False(t, noRate.HasSchedule())

	noTerm := full
	noTerm.LoanTermMonths = 0
	assert.False(t, noTerm.HasSchedule())

	noStart := full
	noStart.StartDate = nil
	assert.False(t, noStart.HasSchedule())
}

func TestNetWorthHistory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  NetWorthHistory
		wantErr bool
		errMsg  string
	}{
		{
			name: "Consistent first-of-month record should pass",
			record: NetWorthHistory{
				ID:          uuid.New(),
				UserID:      uuid.New(),
				Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				Assets:      decimal.NewFromInt(300000),
				Liabilities: decimal.NewFromInt(100000),
				NetWorth:    decimal.NewFromInt(200000),
			},
			wantErr: false,
		},
		{
			name: "Mid-month date should fail",
			record: NetWorthHistory{
				ID:       uuid.New(),
				UserID:   uuid.New(),
				Date:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
				NetWorth: decimal.Zero,
			},
			wantErr: true,
			errMsg:  "net worth record date must be the first day of a month",
		},
		{
			name: "Inconsistent total should fail",
			record: NetWorthHistory{
				ID:          uuid.New(),
				UserID:      uuid.New(),
				Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				Assets:      decimal.NewFromInt(300000),
				Liabilities: decimal.NewFromInt(100000),
				NetWorth:    decimal.NewFromInt(150000),
			},
			wantErr: true,
			errMsg:  "net worth must equal assets minus liabilities",
		},
		{
			name: "Missing owner should fail",
			record: NetWorthHistory{
				ID:       uuid.New(),
				Date:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				NetWorth: decimal.Zero,
			},
			wantErr: true,
			errMsg:  "net worth record must belong to a user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
