package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseCriteria() Criteria {
	return DefaultCriteria(DefaultExcludedTypes, DefaultCollective, DefaultCompanies)
}

func pendingInvoice() Invoice {
	return Invoice{
		Type:       "FC",
		Entry:      "000123",
		Company:    CompanyGrupoBPO,
		Collective: DefaultCollective,
		Client:     "00542",
		DueDate:    time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("1500.50"),
		Paid:       decimal.Zero,
	}
}

func TestCriteria_Validate(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("inverted date range rejected", func(t *testing.T) {
		err := baseCriteria().WithDueRange(&from, &to).Validate()
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("unknown company rejected", func(t *testing.T) {
		err := baseCriteria().WithCompanies("S999").Validate()
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("negative reclamation level rejected", func(t *testing.T) {
		err := baseCriteria().WithReclamationLevel(-1).Validate()
		require.Error(t, err)
	})

	t.Run("defaults valid", func(t *testing.T) {
		assert.NoError(t, baseCriteria().Validate())
	})
}

func TestCriteria_Matches(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	criteria := baseCriteria()

	t.Run("pending invoice matches defaults", func(t *testing.T) {
		inv := pendingInvoice()
		assert.True(t, criteria.Matches(&inv, now))
	})

	t.Run("excluded type filtered", func(t *testing.T) {
		inv := pendingInvoice()
		inv.Type = "AA"
		assert.False(t, criteria.Matches(&inv, now))
	})

	t.Run("wrong collective filtered", func(t *testing.T) {
		inv := pendingInvoice()
		inv.Collective = "4302"
		assert.False(t, criteria.Matches(&inv, now))
	})

	t.Run("settled invoice filtered when pending only", func(t *testing.T) {
		inv := pendingInvoice()
		paid := true
		inv.PaidFlag = &paid
		assert.False(t, criteria.Matches(&inv, now))

		open := criteria
		open.PendingOnly = false
		assert.True(t, open.Matches(&inv, now))
	})

	t.Run("company subset", func(t *testing.T) {
		inv := pendingInvoice()
		assert.True(t, criteria.WithCompanies(CompanyGrupoBPO).Matches(&inv, now))
		assert.False(t, criteria.WithCompanies(CompanyAsesores).Matches(&inv, now))
	})

	t.Run("unconfigured company filtered by defaults", func(t *testing.T) {
		// No explicit company selection still restricts to the configured
		// closed set; the shared ledger carries rows under other entities.
		inv := pendingInvoice()
		inv.Company = "S999"
		assert.False(t, criteria.Matches(&inv, now))
	})

	t.Run("effective companies fall back to configured set", func(t *testing.T) {
		assert.Equal(t, DefaultCompanies, criteria.EffectiveCompanies())
		assert.Equal(t, []string{CompanySelier}, criteria.WithCompanies(CompanySelier).EffectiveCompanies())
	})

	t.Run("tercero equality", func(t *testing.T) {
		inv := pendingInvoice()
		assert.True(t, criteria.WithTercero("00542").Matches(&inv, now))
		assert.False(t, criteria.WithTercero("00001").Matches(&inv, now))
	})

	t.Run("due date range inclusive", func(t *testing.T) {
		inv := pendingInvoice()
		exact := inv.DueDate
		assert.True(t, criteria.WithDueRange(&exact, &exact).Matches(&inv, now))

		later := exact.AddDate(0, 0, 1)
		assert.False(t, criteria.WithDueRange(&later, nil).Matches(&inv, now))
	})

	t.Run("reclamation level treats nil as zero", func(t *testing.T) {
		inv := pendingInvoice()
		assert.True(t, criteria.WithReclamationLevel(0).Matches(&inv, now))
		assert.False(t, criteria.WithReclamationLevel(2).Matches(&inv, now))

		level := 2
		inv.ReclamationLevel = &level
		assert.True(t, criteria.WithReclamationLevel(2).Matches(&inv, now))
	})

	t.Run("overdue only", func(t *testing.T) {
		inv := pendingInvoice()
		assert.True(t, criteria.WithOverdueOnly().Matches(&inv, now))
		assert.False(t, criteria.WithOverdueOnly().Matches(&inv, inv.DueDate.AddDate(0, 0, -1)))
	})
}

// With* methods must not mutate the receiver.
func TestCriteria_Immutable(t *testing.T) {
	criteria := baseCriteria()
	_ = criteria.WithTercero("00542").WithOverdueOnly().WithReclamationLevel(3)

	assert.Empty(t, criteria.Tercero)
	assert.False(t, criteria.OverdueOnly)
	assert.Nil(t, criteria.ReclamationLevel)
}

func TestParseBalanceFilter(t *testing.T) {
	for input, want := range map[string]BalanceFilter{
		"":          BalanceAll,
		"todas":     BalanceAll,
		"positivas": BalancePositive,
		"negativas": BalanceNegative,
	} {
		got, err := ParseBalanceFilter(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}

	_, err := ParseBalanceFilter("ambas")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestBalanceFilter_Keep(t *testing.T) {
	positive := pendingInvoice()

	negative := pendingInvoice()
	negative.Amount = decimal.RequireFromString("-200.00")

	settledExactly := pendingInvoice()
	settledExactly.Paid = settledExactly.Amount

	assert.True(t, BalanceAll.Keep(&positive))
	assert.True(t, BalancePositive.Keep(&positive))
	assert.False(t, BalanceNegative.Keep(&positive))

	assert.True(t, BalanceAll.Keep(&negative))
	assert.False(t, BalancePositive.Keep(&negative))
	assert.True(t, BalanceNegative.Keep(&negative))

	// Zero balance is dropped under every filter.
	assert.False(t, BalanceAll.Keep(&settledExactly))
	assert.False(t, BalancePositive.Keep(&settledExactly))
	assert.False(t, BalanceNegative.Keep(&settledExactly))
}

func TestNormalizeTercero(t *testing.T) {
	assert.Equal(t, "542", NormalizeTercero("00542"))
	assert.Equal(t, "542", NormalizeTercero("542"))
	assert.Equal(t, "0", NormalizeTercero("000"))
	assert.Equal(t, "", NormalizeTercero(""))
}
