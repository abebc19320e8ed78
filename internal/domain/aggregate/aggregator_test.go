package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

func invoice(client, company, amount string, level *int) entity.Invoice {
	return entity.Invoice{
		Type:             "FC",
		Company:          company,
		Client:           client,
		Amount:           decimal.RequireFromString(amount),
		Paid:             decimal.Zero,
		ReclamationLevel: level,
	}
}

func intPtr(v int) *int { return &v }

func TestAggregate_PerClientTotals(t *testing.T) {
	invoices := []entity.Invoice{
		invoice("00542", "S005", "100.00", nil),
		invoice("00542", "S005", "50.50", intPtr(2)),
		invoice("00001", "S001", "10.00", intPtr(3)),
	}

	clients, companies, total := Aggregate(invoices)

	require.Len(t, clients, 2)
	assert.Equal(t, 2, clients["00542"].Invoices)
	assert.True(t, clients["00542"].Amount.Equal(decimal.RequireFromString("150.50")))
	assert.Equal(t, entity.StatusYellow, clients["00542"].Worst)
	assert.Equal(t, entity.StatusRed, clients["00001"].Worst)

	require.Len(t, companies, 2)
	assert.True(t, companies["S005"].Amount.Equal(decimal.RequireFromString("150.50")))
	assert.Equal(t, 1, companies["S005"].Clients)

	assert.Equal(t, 2, total.UniqueClients)
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("160.50")))
}

// A client with invoices under two companies contributes to both company
// aggregates but exactly once to the grand total.
func TestAggregate_DedupAcrossCompanies(t *testing.T) {
	invoices := []entity.Invoice{
		invoice("00542", "S001", "100.00", nil),
		invoice("00542", "S005", "200.00", nil),
		invoice("00777", "S005", "40.00", nil),
	}

	clients, companies, total := Aggregate(invoices)

	// Company sums double-count the shared client by design.
	companySum := companies["S001"].Amount.Add(companies["S005"].Amount)
	assert.True(t, companySum.Equal(decimal.RequireFromString("340.00")))

	// The grand total equals the sum over per-client aggregates.
	clientSum := decimal.Zero
	for _, ca := range clients {
		clientSum = clientSum.Add(ca.Amount)
	}
	assert.True(t, total.Amount.Equal(clientSum))
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("340.00")))
	assert.Equal(t, 2, total.UniqueClients)
}

// Outstanding balance is amount minus paid, so partial payments reduce the
// aggregate.
func TestAggregate_UsesOutstandingBalance(t *testing.T) {
	inv := invoice("00542", "S005", "100.00", nil)
	inv.Paid = decimal.RequireFromString("30.00")

	_, _, total := Aggregate([]entity.Invoice{inv})
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("70.00")))
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := []entity.Invoice{
		invoice("00542", "S001", "100.00", intPtr(3)),
		invoice("00001", "S005", "25.00", nil),
		invoice("00542", "S005", "200.00", nil),
	}
	b := []entity.Invoice{a[2], a[0], a[1]}

	_, _, totalA := Aggregate(a)
	_, _, totalB := Aggregate(b)

	assert.Equal(t, totalA.UniqueClients, totalB.UniqueClients)
	assert.True(t, totalA.Amount.Equal(totalB.Amount))
}

func TestSortedClients_DeterministicOrder(t *testing.T) {
	clients, _, _ := Aggregate([]entity.Invoice{
		invoice("00900", "S005", "50.00", nil),
		invoice("00100", "S005", "50.00", nil),
		invoice("00500", "S005", "80.00", nil),
	})

	sorted := SortedClients(clients)
	require.Len(t, sorted, 3)
	assert.Equal(t, "00500", sorted[0].Client)
	// Equal amounts tie-break by client identifier ascending.
	assert.Equal(t, "00100", sorted[1].Client)
	assert.Equal(t, "00900", sorted[2].Client)
}

func TestSortedCompanies_DescendingAmount(t *testing.T) {
	_, companies, _ := Aggregate([]entity.Invoice{
		invoice("00542", "S001", "10.00", nil),
		invoice("00542", "S005", "300.00", nil),
		invoice("00001", "S010", "100.00", nil),
	})

	sorted := SortedCompanies(companies)
	require.Len(t, sorted, 3)
	assert.Equal(t, "S005", sorted[0].Company)
	assert.Equal(t, "S010", sorted[1].Company)
	assert.Equal(t, "S001", sorted[2].Company)
}
