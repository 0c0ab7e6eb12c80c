package notification

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/pkg/email"
)

// SettlementLine is one bill line carried on a settlement event, in whole
// currency units.
type SettlementLine struct {
	Name      string
	Quantity  int
	UnitPrice int64
	Total     int64
}

// SettlementEvent carries the facts a sink needs to report on a finished
// settlement attempt. Committed events include the full receipt breakdown so
// a sink can deliver it without reading the store again.
type SettlementEvent struct {
	UserID         uuid.UUID
	BillID         *uuid.UUID
	BillNumber     string
	TotalAmount    int64
	Subtotal       int64
	TaxAmount      int64
	DiscountAmount int64
	Lines          []SettlementLine
	PatientName    string
	PatientEmail   string
	FailureKind    string
	Message        string
}

// Sink receives settlement outcomes. Implementations must not block the
// settlement path; slow deliveries happen in their own goroutine.
type Sink interface {
	SettlementCommitted(ctx context.Context, event *SettlementEvent)
	SettlementFailed(ctx context.Context, event *SettlementEvent)
}

// LogSink writes settlement outcomes to the process log.
type LogSink struct{}

// NewLogSink creates a log-backed sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) SettlementCommitted(_ context.Context, event *SettlementEvent) {
	log.Printf("settlement committed: bill=%s total=%d user=%s", event.BillNumber, event.TotalAmount, event.UserID)
}

func (s *LogSink) SettlementFailed(_ context.Context, event *SettlementEvent) {
	log.Printf("settlement failed: user=%s kind=%s message=%q", event.UserID, event.FailureKind, event.Message)
}

// EmailSink sends a receipt to the patient after a committed settlement and
// falls back to logging when no address is known. Failures never propagate.
type EmailSink struct {
	emails *email.EmailService
	logs   *LogSink
}

// NewEmailSink creates an email-backed sink
func NewEmailSink(emails *email.EmailService) *EmailSink {
	return &EmailSink{emails: emails, logs: NewLogSink()}
}

func (s *EmailSink) SettlementCommitted(ctx context.Context, event *SettlementEvent) {
	s.logs.SettlementCommitted(ctx, event)

	if !s.emails.Enabled() || event.PatientEmail == "" {
		return
	}

	data := receiptDataFromEvent(event)
	toEmail := event.PatientEmail
	go func() {
		if err := s.emails.SendSettlementReceipt(toEmail, data); err != nil {
			log.Printf("failed to send receipt for bill %s: %v", data.BillNumber, err)
		}
	}()
}

func (s *EmailSink) SettlementFailed(ctx context.Context, event *SettlementEvent) {
	s.logs.SettlementFailed(ctx, event)
}

// receiptDataFromEvent maps a committed settlement event onto the email
// receipt payload.
func receiptDataFromEvent(event *SettlementEvent) *email.ReceiptData {
	data := &email.ReceiptData{
		BillNumber:     event.BillNumber,
		PatientName:    event.PatientName,
		Subtotal:       event.Subtotal,
		TaxAmount:      event.TaxAmount,
		DiscountAmount: event.DiscountAmount,
		TotalAmount:    event.TotalAmount,
	}
	for _, line := range event.Lines {
		data.Lines = append(data.Lines, email.ReceiptLine{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Total:     line.Total,
		})
	}
	return data
}
