package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	domainRepo "github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/internal/notification"
	"github.com/medsuite/pharmacare-api/pkg/apperror"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
	"github.com/medsuite/pharmacare-api/pkg/utils"
)

// fakeStore is a mutex-guarded in-memory stand-in for the database. Each
// repository fake wraps it so concurrent settlements exercise the same races
// the real store would see.
type fakeStore struct {
	mu            sync.Mutex
	prescriptions map[uuid.UUID]*entity.Prescription
	patients      map[uuid.UUID]*entity.Patient
	items         map[uuid.UUID]*entity.InventoryItem
	bills         map[uuid.UUID]*entity.Bill
	billItems     map[uuid.UUID][]entity.BillItem
	adjustments   []entity.StockAdjustment

	failBillItemInsert  bool
	failSwapAlways      bool
	failSwapTimes       int
	beforePatientCreate func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prescriptions: make(map[uuid.UUID]*entity.Prescription),
		patients:      make(map[uuid.UUID]*entity.Patient),
		items:         make(map[uuid.UUID]*entity.InventoryItem),
		bills:         make(map[uuid.UUID]*entity.Bill),
		billItems:     make(map[uuid.UUID][]entity.BillItem),
	}
}

func (s *fakeStore) addPrescription(userID uuid.UUID, status enum.PrescriptionStatus) *entity.Prescription {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Prescription{
		ID:                 uuid.New(),
		UserID:             userID,
		DoctorName:         "Dr. Mwangi",
		PrescriptionNumber: utils.GeneratePrescriptionNumber(),
		Status:             status,
	}
	s.prescriptions[p.ID] = p
	return p
}

func (s *fakeStore) addItem(userID uuid.UUID, name string, quantity int) *entity.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &entity.InventoryItem{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Code:     utils.GenerateItemCode(),
		Quantity: quantity,
	}
	s.items[item.ID] = item
	return item
}

func (s *fakeStore) addPatient(userID uuid.UUID, name, phone string) *entity.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Patient{ID: uuid.New(), UserID: userID, Name: name}
	if phone != "" {
		p.PhoneNumber = &phone
	}
	s.patients[p.ID] = p
	return p
}

func (s *fakeStore) itemQuantity(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Quantity
}

func (s *fakeStore) billCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bills)
}

type fakePrescriptionRepo struct{ s *fakeStore }

func (r *fakePrescriptionRepo) Create(_ context.Context, p *entity.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.prescriptions[p.ID] = p
	return nil
}

func (r *fakePrescriptionRepo) GetByIDForOwner(_ context.Context, id, userID uuid.UUID) (*entity.Prescription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prescriptions[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePrescriptionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.PrescriptionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.prescriptions[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePrescriptionRepo) List(_ context.Context, _ uuid.UUID, _ *domainRepo.PrescriptionFilterParams) ([]entity.Prescription, int64, error) {
	return nil, 0, nil
}

type fakePatientRepo struct{ s *fakeStore }

func (r *fakePatientRepo) Create(_ context.Context, p *entity.Patient) error {
	if r.s.beforePatientCreate != nil {
		hook := r.s.beforePatientCreate
		r.s.beforePatientCreate = nil
		hook()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.PhoneNumber != nil {
		for _, existing := range r.s.patients {
			if existing.UserID == p.UserID && existing.PhoneNumber != nil && *existing.PhoneNumber == *p.PhoneNumber {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) GetByPhone(_ context.Context, userID uuid.UUID, phone string) (*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.UserID == userID && p.PhoneNumber != nil && *p.PhoneNumber == phone {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *entity.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.patients, id)
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, _ uuid.UUID, _ *pagination.PaginationParams, _ string) ([]entity.Patient, int64, error) {
	return nil, 0, nil
}

type fakeInventoryRepo struct{ s *fakeStore }

func (r *fakeInventoryRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.s.items[item.ID] = item
	return nil
}

func (r *fakeInventoryRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *fakeInventoryRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.InventoryItem
	for _, id := range ids {
		if item, ok := r.s.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) GetQuantity(_ context.Context, itemID, userID uuid.UUID) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[itemID]
	if !ok || item.UserID != userID {
		return 0, false, nil
	}
	return item.Quantity, true, nil
}

func (r *fakeInventoryRepo) CompareAndSwapQuantity(_ context.Context, itemID, userID uuid.UUID, expectedQty, newQty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSwapAlways {
		return false, nil
	}
	if r.s.failSwapTimes > 0 {
		r.s.failSwapTimes--
		return false, nil
	}
	item, ok := r.s.items[itemID]
	if !ok || item.UserID != userID || item.Quantity != expectedQty {
		return false, nil
	}
	item.Quantity = newQty
	item.Version++
	return true, nil
}

func (r *fakeInventoryRepo) AdjustQuantity(_ context.Context, itemID, userID uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[itemID]
	if !ok || item.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	item.Quantity += delta
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	item.Version++
	return nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, _ *entity.InventoryItem) error { return nil }
func (r *fakeInventoryRepo) Delete(_ context.Context, _ uuid.UUID) error             { return nil }
func (r *fakeInventoryRepo) List(_ context.Context, _ uuid.UUID, _ *domainRepo.InventoryFilterParams) ([]entity.InventoryItem, int64, error) {
	return nil, 0, nil
}
func (r *fakeInventoryRepo) GetLowStock(_ context.Context, _ uuid.UUID) ([]entity.InventoryItem, error) {
	return nil, nil
}
func (r *fakeInventoryRepo) AllLowStock(_ context.Context) ([]entity.InventoryItem, error) {
	return nil, nil
}
func (r *fakeInventoryRepo) CountLowStock(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeBillRepo struct{ s *fakeStore }

func (r *fakeBillRepo) Create(_ context.Context, bill *entity.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	cp := *bill
	r.s.bills[bill.ID] = &cp
	return nil
}

func (r *fakeBillRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bill, ok := r.s.bills[id]
	if !ok {
		return nil, nil
	}
	cp := *bill
	return &cp, nil
}

func (r *fakeBillRepo) GetByBillNumber(_ context.Context, billNumber string) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, bill := range r.s.bills {
		if bill.BillNumber == billNumber {
			cp := *bill
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBillRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := r.GetByID(ctx, id)
	if err != nil || bill == nil {
		return bill, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bill.Items = append([]entity.BillItem(nil), r.s.billItems[id]...)
	return bill, nil
}

func (r *fakeBillRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.BillStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if bill, ok := r.s.bills[id]; ok {
		bill.Status = status
	}
	return nil
}

func (r *fakeBillRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.bills, id)
	return nil
}

func (r *fakeBillRepo) List(_ context.Context, _ uuid.UUID, _ *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	return nil, 0, nil
}

func (r *fakeBillRepo) TodayStats(_ context.Context, _ uuid.UUID) (int64, int64, error) {
	return 0, 0, nil
}

type fakeBillItemRepo struct{ s *fakeStore }

func (r *fakeBillItemRepo) CreateBatch(_ context.Context, items []entity.BillItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failBillItemInsert {
		return errors.New("bill item insert failed")
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		r.s.billItems[items[i].BillID] = append(r.s.billItems[items[i].BillID], items[i])
	}
	return nil
}

func (r *fakeBillItemRepo) GetByBillID(_ context.Context, billID uuid.UUID) ([]entity.BillItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.BillItem(nil), r.s.billItems[billID]...), nil
}

type fakeAdjustmentRepo struct{ s *fakeStore }

func (r *fakeAdjustmentRepo) Create(_ context.Context, a *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.adjustments = append(r.s.adjustments, *a)
	return nil
}

func (r *fakeAdjustmentRepo) CreateBatch(_ context.Context, adjustments []entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range adjustments {
		if adjustments[i].ID == uuid.Nil {
			adjustments[i].ID = uuid.New()
		}
		r.s.adjustments = append(r.s.adjustments, adjustments[i])
	}
	return nil
}

func (r *fakeAdjustmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.StockAdjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.adjustments {
		if r.s.adjustments[i].ID == id {
			cp := r.s.adjustments[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAdjustmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.AdjustmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.adjustments {
		if r.s.adjustments[i].ID == id {
			r.s.adjustments[i].Status = status
		}
	}
	return nil
}

func (r *fakeAdjustmentRepo) ListPending(_ context.Context, _ uuid.UUID, _ *pagination.PaginationParams) ([]entity.StockAdjustment, int64, error) {
	return nil, 0, nil
}

func (r *fakeAdjustmentRepo) CountPending(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

type recordingSink struct {
	mu        sync.Mutex
	committed []notification.SettlementEvent
	failed    []notification.SettlementEvent
}

func (r *recordingSink) SettlementCommitted(_ context.Context, event *notification.SettlementEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, *event)
}

func (r *recordingSink) SettlementFailed(_ context.Context, event *notification.SettlementEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, *event)
}

func newTestSettlement(t *testing.T, store *fakeStore) (*SettlementService, *recordingSink) {
	t.Helper()
	billNumbers, err := utils.NewBillNumberGenerator(1)
	require.NoError(t, err)
	sink := &recordingSink{}
	svc := NewSettlementService(
		&fakePrescriptionRepo{s: store},
		&fakePatientRepo{s: store},
		&fakeInventoryRepo{s: store},
		&fakeBillRepo{s: store},
		&fakeBillItemRepo{s: store},
		&fakeAdjustmentRepo{s: store},
		billNumbers,
		sink,
	)
	return svc, sink
}

func basicInput(userID uuid.UUID, prescriptionID uuid.UUID, item *entity.InventoryItem, quantity int) *SettleInput {
	return &SettleInput{
		UserID:         userID,
		PrescriptionID: prescriptionID,
		PatientName:    "Jane Wambui",
		PatientPhone:   "0712345678",
		TaxPercent:     18,
		PaymentMethod:  enum.PaymentMethodCash,
		Items: []SettlementItemInput{
			{InventoryItemID: item.ID, Name: item.Name, UnitPrice: 10, Quantity: quantity},
		},
	}
}

func TestSettleSuccess(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, sink := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 3))
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, result.Status)
	require.NotNil(t, result.BillID)
	assert.NotEmpty(t, result.BillNumber)
	// 3 x 10 = 30 subtotal, 18% tax rounds 5.4 down to 5
	assert.Equal(t, int64(35), result.TotalAmount)

	assert.Equal(t, 7, store.itemQuantity(item.ID))

	bill := store.bills[*result.BillID]
	require.NotNil(t, bill)
	assert.Equal(t, enum.BillStatusPaid, bill.Status)
	assert.Equal(t, int64(30), bill.Subtotal)
	assert.Equal(t, int64(5), bill.TaxAmount)
	require.NotNil(t, bill.PatientID)
	assert.Len(t, store.billItems[bill.ID], 1)

	assert.Equal(t, enum.PrescriptionStatusDispensed, store.prescriptions[prescription.ID].Status)
	assert.Len(t, sink.committed, 1)
	assert.Empty(t, sink.failed)
}

func TestSettleInsufficientStockRejectsBeforeAnyWrite(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Amoxicillin 250mg", 2)
	svc, sink := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 3))
	require.Error(t, err)

	assert.Equal(t, StateFailed, result.Status)
	assert.Equal(t, apperror.KindInsufficientInventory, result.ErrorKind)
	assert.Equal(t, 0, store.billCount())
	assert.Equal(t, 2, store.itemQuantity(item.ID))
	assert.Empty(t, store.patients)
	assert.Len(t, sink.failed, 1)
}

func TestSettlePrescriptionNotFound(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	item := store.addItem(userID, "Ibuprofen 400mg", 10)
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, uuid.New(), item, 1))
	require.Error(t, err)
	assert.Equal(t, apperror.KindPrescriptionNotFound, result.ErrorKind)
	assert.Equal(t, 0, store.billCount())
}

func TestSettleRejectsOtherOwnersPrescription(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	otherPrescription := store.addPrescription(uuid.New(), enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Ibuprofen 400mg", 10)
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, otherPrescription.ID, item, 1))
	require.Error(t, err)
	assert.Equal(t, apperror.KindPrescriptionNotFound, result.ErrorKind)
}

func TestSettleRejectsVoidedPrescription(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusVoided)
	item := store.addItem(userID, "Cetirizine 10mg", 10)
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 1))
	require.Error(t, err)
	assert.Equal(t, StateFailed, result.Status)
	assert.Equal(t, 0, store.billCount())
}

func TestSettleReusesPatientByPhone(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	existing := store.addPatient(userID, "Jane Wambui", "9999999999")
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, _ := newTestSettlement(t, store)

	input := basicInput(userID, prescription.ID, item, 1)
	input.PatientPhone = "9999999999"

	result, err := svc.Settle(context.Background(), input)
	require.NoError(t, err)

	bill := store.bills[*result.BillID]
	require.NotNil(t, bill.PatientID)
	assert.Equal(t, existing.ID, *bill.PatientID)
	assert.Len(t, store.patients, 1)
}

func TestSettleCommittedEventCarriesReceiptDetails(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	existing := store.addPatient(userID, "Jane Wambui", "0712345678")
	address := "jane@example.com"
	existing.Email = &address
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, sink := newTestSettlement(t, store)

	_, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 3))
	require.NoError(t, err)

	require.Len(t, sink.committed, 1)
	event := sink.committed[0]
	assert.Equal(t, "Jane Wambui", event.PatientName)
	assert.Equal(t, address, event.PatientEmail)
	assert.Equal(t, int64(30), event.Subtotal)
	assert.Equal(t, int64(5), event.TaxAmount)
	assert.Equal(t, int64(35), event.TotalAmount)
	require.Len(t, event.Lines, 1)
	assert.Equal(t, "Paracetamol 500mg", event.Lines[0].Name)
	assert.Equal(t, 3, event.Lines[0].Quantity)
	assert.Equal(t, int64(10), event.Lines[0].UnitPrice)
	assert.Equal(t, int64(30), event.Lines[0].Total)
}

func TestSettleWithoutPhoneAlwaysCreatesFreshPatient(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, _ := newTestSettlement(t, store)

	for i := 0; i < 2; i++ {
		prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
		input := basicInput(userID, prescription.ID, item, 1)
		input.PatientPhone = ""
		_, err := svc.Settle(context.Background(), input)
		require.NoError(t, err)
	}

	// Same name twice, no phone: two distinct patients rather than a merge.
	assert.Len(t, store.patients, 2)
}

func TestSettleDuplicatePhoneInsertRaceReusesWinner(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, _ := newTestSettlement(t, store)

	// A competing settlement inserts the same phone between this saga's
	// lookup and insert.
	var winner *entity.Patient
	store.beforePatientCreate = func() {
		winner = store.addPatient(userID, "Jane Wambui", "0712345678")
	}

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 1))
	require.NoError(t, err)

	bill := store.bills[*result.BillID]
	require.NotNil(t, bill.PatientID)
	assert.Equal(t, winner.ID, *bill.PatientID)
	assert.Len(t, store.patients, 1)
}

func TestSettleBillItemFailureDeletesOrphanBill(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	store.failBillItemInsert = true
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 3))
	require.Error(t, err)

	assert.Equal(t, StateFailed, result.Status)
	assert.Equal(t, apperror.KindBillPersistenceFailed, result.ErrorKind)
	assert.True(t, result.CompensationApplied)
	assert.Equal(t, 0, store.billCount())
	assert.Equal(t, 10, store.itemQuantity(item.ID))
}

func TestSettleRetriesSwapConflictThenSucceeds(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	store.failSwapTimes = 2
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 3))
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, result.Status)
	assert.Equal(t, 7, store.itemQuantity(item.ID))
}

func TestSettleSwapConflictExhaustedFlagsBillForReconciliation(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	store.failSwapAlways = true
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), basicInput(userID, prescription.ID, item, 3))
	require.Error(t, err)

	assert.Equal(t, StateFailed, result.Status)
	assert.Equal(t, apperror.KindInventoryUpdateConflict, result.ErrorKind)

	// The financial record stands; the failure becomes reconciliation work.
	require.NotNil(t, result.BillID)
	bill := store.bills[*result.BillID]
	require.NotNil(t, bill)
	assert.Equal(t, enum.BillStatusReconciliationFailed, bill.Status)

	assert.True(t, result.CompensationApplied)
	assert.Equal(t, []uuid.UUID{item.ID}, result.UnadjustedItems)
	require.Len(t, store.adjustments, 1)
	assert.Equal(t, -3, store.adjustments[0].Delta)
	assert.Equal(t, enum.AdjustmentStatusPending, store.adjustments[0].Status)

	assert.Equal(t, 10, store.itemQuantity(item.ID))
}

func TestSettleConcurrentDecrementsNeverGoNegative(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	item := store.addItem(userID, "Insulin 10ml", 1)
	svc, _ := newTestSettlement(t, store)

	p1 := store.addPrescription(userID, enum.PrescriptionStatusActive)
	p2 := store.addPrescription(userID, enum.PrescriptionStatusActive)

	results := make([]*SettlementResult, 2)
	var wg sync.WaitGroup
	for i, prescriptionID := range []uuid.UUID{p1.ID, p2.ID} {
		wg.Add(1)
		go func(i int, pid uuid.UUID) {
			defer wg.Done()
			input := basicInput(userID, pid, item, 1)
			input.PatientPhone = ""
			results[i], _ = svc.Settle(context.Background(), input)
		}(i, prescriptionID)
	}
	wg.Wait()

	committed := 0
	for _, result := range results {
		if result.Status == StateCommitted {
			committed++
		} else {
			assert.Equal(t, StateFailed, result.Status)
			assert.Contains(t, []apperror.Kind{
				apperror.KindInsufficientInventory,
				apperror.KindInventoryUpdateConflict,
			}, result.ErrorKind)
		}
	}

	assert.Equal(t, 1, committed, "exactly one racer should commit cleanly")
	assert.Equal(t, 0, store.itemQuantity(item.ID), "quantity must end at zero, never negative")
}

func TestSettleDiscountExceedingSubtotalFailsBeforeAnyWrite(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, _ := newTestSettlement(t, store)

	input := basicInput(userID, prescription.ID, item, 3)
	input.TaxPercent = 0
	input.DiscountAmount = 50

	result, err := svc.Settle(context.Background(), input)
	require.Error(t, err)

	assert.Equal(t, apperror.KindInvalidBillAmount, result.ErrorKind)
	assert.Equal(t, 0, store.billCount())
	assert.Equal(t, 10, store.itemQuantity(item.ID))
}

func TestSettleExpiredDeadlineReportsTimeout(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	item := store.addItem(userID, "Paracetamol 500mg", 10)
	svc, _ := newTestSettlement(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Settle(ctx, basicInput(userID, prescription.ID, item, 1))
	require.Error(t, err)

	assert.Equal(t, apperror.KindTimeout, result.ErrorKind)
	assert.Equal(t, 0, store.billCount())
}

func TestSettleRejectsEmptyCart(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	prescription := store.addPrescription(userID, enum.PrescriptionStatusActive)
	svc, _ := newTestSettlement(t, store)

	result, err := svc.Settle(context.Background(), &SettleInput{
		UserID:         userID,
		PrescriptionID: prescription.ID,
		PaymentMethod:  enum.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, StateFailed, result.Status)
	assert.Equal(t, 0, store.billCount())
}
