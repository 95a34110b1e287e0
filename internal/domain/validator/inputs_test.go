package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

func validRecord(t *testing.T, index int) ledger.Record {
	t.Helper()
	return ledger.NewNormalizer(ledger.DefaultConfig()).NormalizeRecord(ledger.Record{
		Origin:        ledger.OriginInternal,
		OriginalIndex: index,
		Date:          time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.NewFromInt(100),
		Description:   "ok",
	})
}

func invalidRecord(t *testing.T, index int) ledger.Record {
	t.Helper()
	r := ledger.NewNormalizer(ledger.DefaultConfig()).NormalizeRecord(ledger.Record{
		Origin:        ledger.OriginInternal,
		OriginalIndex: index,
		Amount:        decimal.NewFromInt(100),
		Description:   "no date",
	})
	require.True(t, r.Invalid)
	return r
}

func TestCheckInputsEmptySide(t *testing.T) {
	valid := []ledger.Record{validRecord(t, 0)}

	err := CheckInputs(nil, valid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "internal")

	err = CheckInputs(valid, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "external")
}

func TestCheckInputsInvalidFraction(t *testing.T) {
	valid := []ledger.Record{validRecord(t, 0)}

	t.Run("half invalid passes", func(t *testing.T) {
		side := []ledger.Record{validRecord(t, 0), invalidRecord(t, 1)}
		assert.NoError(t, CheckInputs(side, valid))
	})

	t.Run("mostly invalid fails", func(t *testing.T) {
		side := []ledger.Record{validRecord(t, 0), invalidRecord(t, 1), invalidRecord(t, 2)}
		err := CheckInputs(side, valid)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}
