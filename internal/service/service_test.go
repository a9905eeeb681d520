package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/taskmart/internal/config"
	"github.com/GlebRadaev/taskmart/internal/memstore"
	"github.com/GlebRadaev/taskmart/internal/repo"
)

func testConfig() *config.Config {
	return &config.Config{
		SnowflakeNode:            1,
		OrderTTL:                 time.Hour,
		SilverCashRate:           decimal.Zero,
		OneTaskPerMerchantPerDay: true,
		MinCashWithdrawal:        decimal.NewFromInt(10),
		MinSilverWithdrawal:      decimal.NewFromInt(10),
		CashFeeRate:              decimal.Zero,
		SilverFeeRate:            decimal.RequireFromString("0.05"),
		BatchReviewConcurrency:   4,
	}
}

func TestNew(t *testing.T) {
	services, err := New(repo.NewInMemory(memstore.New()), testConfig(), nil)
	require.NoError(t, err)

	assert.NotNil(t, services.TaskService)
	assert.NotNil(t, services.OrderService)
	assert.NotNil(t, services.LedgerService)
	assert.NotNil(t, services.WithdrawalService)
}

func TestNewInvalidNode(t *testing.T) {
	cfg := testConfig()
	cfg.SnowflakeNode = 5000

	_, err := New(repo.NewInMemory(memstore.New()), cfg, nil)
	assert.Error(t, err)
}
