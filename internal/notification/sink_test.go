package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptDataFromEvent(t *testing.T) {
	billID := uuid.New()
	event := &SettlementEvent{
		UserID:         uuid.New(),
		BillID:         &billID,
		BillNumber:     "BILL-1234",
		Subtotal:       30,
		TaxAmount:      5,
		DiscountAmount: 0,
		TotalAmount:    35,
		PatientName:    "Jane Wambui",
		PatientEmail:   "jane@example.com",
		Lines: []SettlementLine{
			{Name: "Paracetamol 500mg", Quantity: 3, UnitPrice: 10, Total: 30},
		},
	}

	data := receiptDataFromEvent(event)

	assert.Equal(t, "BILL-1234", data.BillNumber)
	assert.Equal(t, "Jane Wambui", data.PatientName)
	assert.Equal(t, int64(30), data.Subtotal)
	assert.Equal(t, int64(5), data.TaxAmount)
	assert.Equal(t, int64(35), data.TotalAmount)
	require.Len(t, data.Lines, 1)
	assert.Equal(t, "Paracetamol 500mg", data.Lines[0].Name)
	assert.Equal(t, 3, data.Lines[0].Quantity)
	assert.Equal(t, int64(30), data.Lines[0].Total)
}
