package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	"github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/internal/notification"
	"github.com/medsuite/pharmacare-api/pkg/apperror"
	"github.com/medsuite/pharmacare-api/pkg/pricing"
	"github.com/medsuite/pharmacare-api/pkg/utils"
)

// SettlementState names the step a settlement is in. The happy path walks the
// states in declaration order; Failed is reachable from every non-terminal
// state and Compensating is entered only after a bill row already exists.
type SettlementState string

const (
	StateValidating            SettlementState = "validating"
	StateCheckingInventory     SettlementState = "checking-inventory"
	StateReconcilingPatient    SettlementState = "reconciling-patient"
	StateCommittingBill        SettlementState = "committing-bill"
	StateDecrementingInventory SettlementState = "decrementing-inventory"
	StateCompensating          SettlementState = "compensating"
	StateCommitted             SettlementState = "committed"
	StateFailed                SettlementState = "failed"
)

// decrementMaxRetries bounds the read/compare-and-swap cycle per line item
// before the conflict is surfaced to an operator.
const decrementMaxRetries = 3

// SettlementItemInput is one cart line entering a settlement.
type SettlementItemInput struct {
	InventoryItemID uuid.UUID
	Name            string
	UnitPrice       float64
	Quantity        int
}

// SettleInput is the full settlement request.
type SettleInput struct {
	UserID         uuid.UUID
	PrescriptionID uuid.UUID
	PatientName    string
	PatientPhone   string
	TaxPercent     float64
	DiscountAmount float64
	PaymentMethod  enum.PaymentMethod
	Items          []SettlementItemInput
}

// SettlementResult is the terminal outcome reported to the caller. Exactly one
// of the two terminal states is set; a failed result after bill commit keeps
// BillID populated because the financial record stands.
type SettlementResult struct {
	Status              SettlementState `json:"status"`
	BillID              *uuid.UUID      `json:"bill_id,omitempty"`
	BillNumber          string          `json:"bill_number,omitempty"`
	TotalAmount         int64           `json:"total_amount,omitempty"`
	ErrorKind           apperror.Kind   `json:"error_kind,omitempty"`
	Message             string          `json:"message,omitempty"`
	CompensationApplied bool            `json:"compensation_applied"`
	UnadjustedItems     []uuid.UUID     `json:"unadjusted_items,omitempty"`
}

// SettlementService orchestrates the bill settlement saga: validate the
// prescription, check stock, reconcile the patient, commit the bill, then
// decrement inventory with optimistic retries. The store only guarantees
// atomicity per write, so each step owns its compensation rules.
type SettlementService struct {
	prescriptionRepo repository.PrescriptionRepository
	patientRepo      repository.PatientRepository
	inventoryRepo    repository.InventoryRepository
	billRepo         repository.BillRepository
	billItemRepo     repository.BillItemRepository
	adjustmentRepo   repository.StockAdjustmentRepository
	billNumbers      *utils.BillNumberGenerator
	notifier         notification.Sink
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	prescriptionRepo repository.PrescriptionRepository,
	patientRepo repository.PatientRepository,
	inventoryRepo repository.InventoryRepository,
	billRepo repository.BillRepository,
	billItemRepo repository.BillItemRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	billNumbers *utils.BillNumberGenerator,
	notifier notification.Sink,
) *SettlementService {
	return &SettlementService{
		prescriptionRepo: prescriptionRepo,
		patientRepo:      patientRepo,
		inventoryRepo:    inventoryRepo,
		billRepo:         billRepo,
		billItemRepo:     billItemRepo,
		adjustmentRepo:   adjustmentRepo,
		billNumbers:      billNumbers,
		notifier:         notifier,
	}
}

// Settle runs one settlement to a terminal state. On failure the returned
// result and error describe the same outcome; the result additionally reports
// whether compensation ran and which items still need a manual adjustment.
func (s *SettlementService) Settle(ctx context.Context, input *SettleInput) (*SettlementResult, error) {
	result := &SettlementResult{Status: StateValidating}

	// Validating
	if err := validateSettleInput(input); err != nil {
		return s.fail(ctx, input, result, err)
	}

	prescription, err := s.prescriptionRepo.GetByIDForOwner(ctx, input.PrescriptionID, input.UserID)
	if err != nil {
		return s.fail(ctx, input, result, err)
	}
	if prescription == nil {
		return s.fail(ctx, input, result, apperror.NewPrescriptionNotFoundError(input.PrescriptionID))
	}
	if !prescription.Status.Consumable() {
		return s.fail(ctx, input, result, apperror.NewBadRequestError(
			fmt.Sprintf("Prescription %s is %s and cannot be billed", prescription.PrescriptionNumber, prescription.Status)))
	}

	if err := stepDeadline(ctx, "validation"); err != nil {
		return s.fail(ctx, input, result, err)
	}

	// CheckingInventory. Advisory only: the decrementer re-validates under
	// compare-and-swap. The point here is rejecting hopeless carts before
	// any durable write.
	result.Status = StateCheckingInventory
	for _, item := range input.Items {
		available, found, err := s.inventoryRepo.GetQuantity(ctx, item.InventoryItemID, input.UserID)
		if err != nil {
			return s.fail(ctx, input, result, apperror.NewInventoryLookupFailedError(item.InventoryItemID, err))
		}
		if !found {
			return s.fail(ctx, input, result, apperror.NewInventoryLookupFailedError(item.InventoryItemID, gorm.ErrRecordNotFound))
		}
		if item.Quantity > available {
			return s.fail(ctx, input, result, apperror.NewInsufficientInventoryError(item.Name, available, item.Quantity))
		}
	}

	lines := make([]pricing.LineItem, len(input.Items))
	for i, item := range input.Items {
		lines[i] = pricing.LineItem{
			ItemID:    item.InventoryItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	totals, err := pricing.Calculate(lines, input.TaxPercent, input.DiscountAmount)
	if err != nil {
		return s.fail(ctx, input, result, err)
	}

	if err := stepDeadline(ctx, "inventory check"); err != nil {
		return s.fail(ctx, input, result, err)
	}

	// ReconcilingPatient. A patient row created here that the saga later
	// abandons is an acceptable orphan; patients are best-effort facts, not
	// financial records, so this step has no compensation.
	result.Status = StateReconcilingPatient
	patient, err := s.reconcilePatient(ctx, input, prescription)
	if err != nil {
		return s.fail(ctx, input, result, apperror.NewPatientReconciliationFailedError(err))
	}

	if err := stepDeadline(ctx, "patient reconciliation"); err != nil {
		return s.fail(ctx, input, result, err)
	}

	// CommittingBill
	result.Status = StateCommittingBill
	bill := &entity.Bill{
		UserID:         input.UserID,
		PrescriptionID: prescription.ID,
		BillNumber:     s.billNumbers.Next(),
		Subtotal:       totals.Subtotal,
		TaxPercent:     totals.TaxPercent,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: totals.DiscountAmount,
		TotalAmount:    totals.Total,
		Status:         enum.BillStatusPaid,
		PaymentMethod:  input.PaymentMethod,
	}
	if patient != nil {
		bill.PatientID = &patient.ID
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return s.fail(ctx, input, result, apperror.NewBillPersistenceFailedError(err))
	}

	billItems := make([]entity.BillItem, len(input.Items))
	for i, item := range input.Items {
		billItems[i] = entity.BillItem{
			BillID:          bill.ID,
			InventoryItemID: item.InventoryItemID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       pricing.Round(item.UnitPrice),
			TotalPrice:      pricing.Round(item.UnitPrice * float64(item.Quantity)),
		}
	}
	if err := s.billItemRepo.CreateBatch(ctx, billItems); err != nil {
		// The bill header exists without items. An items-less bill is not a
		// usable financial record yet, so deleting it is the one place where
		// rolling back a committed row is correct.
		result.Status = StateCompensating
		if delErr := s.billRepo.Delete(ctx, bill.ID); delErr != nil {
			log.Printf("failed to delete orphaned bill %s: %v", bill.BillNumber, delErr)
		} else {
			result.CompensationApplied = true
		}
		return s.fail(ctx, input, result, apperror.NewBillPersistenceFailedError(err))
	}

	result.BillID = &bill.ID
	result.BillNumber = bill.BillNumber
	result.TotalAmount = bill.TotalAmount

	// DecrementingInventory. From here on the bill is a real financial
	// record: failures become reconciliation work, never automatic undo.
	result.Status = StateDecrementingInventory
	var firstDecrementErr error
	var unadjusted []uuid.UUID
	var adjustments []entity.StockAdjustment
	for _, item := range input.Items {
		if err := s.decrementWithRetry(ctx, input.UserID, item); err != nil {
			if firstDecrementErr == nil {
				firstDecrementErr = err
			}
			unadjusted = append(unadjusted, item.InventoryItemID)
			adjustments = append(adjustments, entity.StockAdjustment{
				UserID:          input.UserID,
				InventoryItemID: item.InventoryItemID,
				BillID:          &bill.ID,
				Delta:           -item.Quantity,
				Reason:          fmt.Sprintf("settlement decrement failed for bill %s", bill.BillNumber),
				Status:          enum.AdjustmentStatusPending,
			})
		}
	}

	if firstDecrementErr != nil {
		result.Status = StateCompensating
		if err := s.billRepo.UpdateStatus(ctx, bill.ID, enum.BillStatusReconciliationFailed); err != nil {
			log.Printf("failed to flag bill %s for reconciliation: %v", bill.BillNumber, err)
		}
		if err := s.adjustmentRepo.CreateBatch(ctx, adjustments); err != nil {
			log.Printf("failed to queue stock adjustments for bill %s: %v", bill.BillNumber, err)
		}
		result.CompensationApplied = true
		result.UnadjustedItems = unadjusted
		return s.fail(ctx, input, result, firstDecrementErr)
	}

	if prescription.Status == enum.PrescriptionStatusActive {
		if err := s.prescriptionRepo.UpdateStatus(ctx, prescription.ID, enum.PrescriptionStatusDispensed); err != nil {
			log.Printf("failed to mark prescription %s dispensed: %v", prescription.PrescriptionNumber, err)
		}
	}

	result.Status = StateCommitted
	event := &notification.SettlementEvent{
		UserID:         input.UserID,
		BillID:         &bill.ID,
		BillNumber:     bill.BillNumber,
		TotalAmount:    bill.TotalAmount,
		Subtotal:       bill.Subtotal,
		TaxAmount:      bill.TaxAmount,
		DiscountAmount: bill.DiscountAmount,
	}
	for _, billItem := range billItems {
		event.Lines = append(event.Lines, notification.SettlementLine{
			Name:      billItem.Name,
			Quantity:  billItem.Quantity,
			UnitPrice: billItem.UnitPrice,
			Total:     billItem.TotalPrice,
		})
	}
	if patient != nil {
		event.PatientName = patient.Name
		if patient.Email != nil {
			event.PatientEmail = *patient.Email
		}
	}
	s.notifier.SettlementCommitted(ctx, event)
	return result, nil
}

// decrementWithRetry re-reads the quantity and applies a compare-and-swap,
// retrying while concurrent settlements race on the same row. The stale
// availability-check value is never trusted here.
func (s *SettlementService) decrementWithRetry(ctx context.Context, userID uuid.UUID, item SettlementItemInput) error {
	for attempt := 0; attempt < decrementMaxRetries; attempt++ {
		current, found, err := s.inventoryRepo.GetQuantity(ctx, item.InventoryItemID, userID)
		if err != nil {
			return apperror.NewInventoryLookupFailedError(item.InventoryItemID, err)
		}
		if !found {
			return apperror.NewInventoryLookupFailedError(item.InventoryItemID, gorm.ErrRecordNotFound)
		}
		if current < item.Quantity {
			return apperror.NewInsufficientInventoryError(item.Name, current, item.Quantity)
		}

		newQuantity := current - item.Quantity
		if newQuantity < 0 {
			newQuantity = 0
		}

		swapped, err := s.inventoryRepo.CompareAndSwapQuantity(ctx, item.InventoryItemID, userID, current, newQuantity)
		if err != nil {
			return apperror.NewInventoryLookupFailedError(item.InventoryItemID, err)
		}
		if swapped {
			return nil
		}
	}
	return apperror.NewInventoryUpdateConflictError(item.InventoryItemID)
}

// reconcilePatient resolves the settlement's patient to one canonical row.
// Order of preference: the prescription's linked patient, then reuse by
// (owner, phone), then a fresh row. Phone is the only dedup key; without one
// every entry is a distinct patient.
func (s *SettlementService) reconcilePatient(ctx context.Context, input *SettleInput, prescription *entity.Prescription) (*entity.Patient, error) {
	if prescription.PatientID != nil {
		patient, err := s.patientRepo.GetByID(ctx, *prescription.PatientID)
		if err != nil {
			return nil, err
		}
		if patient != nil {
			changed := false
			if input.PatientName != "" && patient.Name != input.PatientName {
				patient.Name = input.PatientName
				changed = true
			}
			if input.PatientPhone != "" && (patient.PhoneNumber == nil || *patient.PhoneNumber != input.PatientPhone) {
				phone := input.PatientPhone
				patient.PhoneNumber = &phone
				changed = true
			}
			if changed {
				if err := s.patientRepo.Update(ctx, patient); err != nil {
					return nil, err
				}
			}
			return patient, nil
		}
		// Dangling link; fall through and resolve from the request fields.
	}

	if input.PatientPhone != "" {
		existing, err := s.patientRepo.GetByPhone(ctx, input.UserID, input.PatientPhone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if input.PatientName != "" && existing.Name != input.PatientName {
				existing.Name = input.PatientName
				if err := s.patientRepo.Update(ctx, existing); err != nil {
					return nil, err
				}
			}
			return existing, nil
		}

		phone := input.PatientPhone
		patient := &entity.Patient{
			UserID:      input.UserID,
			Name:        input.PatientName,
			PhoneNumber: &phone,
		}
		err = s.patientRepo.Create(ctx, patient)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent settlement inserted the same (owner, phone) first.
			return s.patientRepo.GetByPhone(ctx, input.UserID, input.PatientPhone)
		}
		if err != nil {
			return nil, err
		}
		return patient, nil
	}

	if input.PatientName == "" {
		return nil, nil
	}

	patient := &entity.Patient{
		UserID: input.UserID,
		Name:   input.PatientName,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// fail finalizes a settlement in the Failed state and notifies the sink.
func (s *SettlementService) fail(ctx context.Context, input *SettleInput, result *SettlementResult, err error) (*SettlementResult, error) {
	appErr := apperror.GetAppError(err)
	result.Status = StateFailed
	result.ErrorKind = appErr.Kind
	result.Message = appErr.Message

	event := &notification.SettlementEvent{
		UserID:      input.UserID,
		BillID:      result.BillID,
		BillNumber:  result.BillNumber,
		FailureKind: string(appErr.Kind),
		Message:     appErr.Message,
	}
	s.notifier.SettlementFailed(ctx, event)
	return result, appErr
}

// stepDeadline reports a timeout between steps. An in-flight durable write is
// always allowed to finish; the deadline only stops the saga from starting
// the next step.
func stepDeadline(ctx context.Context, step string) error {
	select {
	case <-ctx.Done():
		return apperror.NewTimeoutError(step)
	default:
		return nil
	}
}

func validateSettleInput(input *SettleInput) error {
	if len(input.Items) == 0 {
		return apperror.NewBadRequestError("Cart must contain at least one item")
	}
	for _, item := range input.Items {
		if item.InventoryItemID == uuid.Nil {
			return apperror.NewBadRequestError("Every line item needs an inventory item id")
		}
		if item.Quantity < 1 {
			return apperror.NewBadRequestError(fmt.Sprintf("Quantity for %s must be at least 1", item.Name))
		}
		if item.UnitPrice < 0 {
			return apperror.NewBadRequestError(fmt.Sprintf("Unit price for %s cannot be negative", item.Name))
		}
	}
	if !input.PaymentMethod.Valid() {
		return apperror.NewBadRequestError("Unknown payment method")
	}
	if input.TaxPercent < 0 || input.TaxPercent > 100 {
		return apperror.NewBadRequestError("Tax percent must be between 0 and 100")
	}
	if input.DiscountAmount < 0 {
		return apperror.NewBadRequestError("Discount cannot be negative")
	}
	return nil
}
