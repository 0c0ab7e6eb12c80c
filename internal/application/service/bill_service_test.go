package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
)

func newTestBillService(store *fakeStore) *BillService {
	return NewBillService(
		&fakeBillRepo{s: store},
		&fakeBillItemRepo{s: store},
		&fakeInventoryRepo{s: store},
	)
}

func TestGetBillByNumber(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	svc := newTestBillService(store)

	bill := &entity.Bill{
		UserID:      userID,
		BillNumber:  "BILL-4242",
		Status:      enum.BillStatusPaid,
		TotalAmount: 35,
	}
	require.NoError(t, (&fakeBillRepo{s: store}).Create(context.Background(), bill))
	require.NoError(t, (&fakeBillItemRepo{s: store}).CreateBatch(context.Background(), []entity.BillItem{
		{BillID: bill.ID, InventoryItemID: uuid.New(), Name: "Paracetamol 500mg", Quantity: 3, UnitPrice: 10, TotalPrice: 30},
	}))

	found, err := svc.GetBillByNumber(context.Background(), userID, "BILL-4242")
	require.NoError(t, err)
	assert.Equal(t, bill.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Paracetamol 500mg", found.Items[0].Name)
}

func TestGetBillByNumberScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestBillService(store)

	bill := &entity.Bill{UserID: uuid.New(), BillNumber: "BILL-4243", Status: enum.BillStatusPaid}
	require.NoError(t, (&fakeBillRepo{s: store}).Create(context.Background(), bill))

	_, err := svc.GetBillByNumber(context.Background(), uuid.New(), "BILL-4243")
	require.Error(t, err, "another owner's bill must look like a missing bill")

	_, err = svc.GetBillByNumber(context.Background(), bill.UserID, "BILL-0000")
	require.Error(t, err)
}
