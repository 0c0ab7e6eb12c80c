package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medsuite/pharmacare-api/internal/domain/repository"
)

// MaintenanceScheduler runs recurring housekeeping jobs: purging expired
// idempotency keys and reporting items that hit their stock alert level.
type MaintenanceScheduler struct {
	cron            *cron.Cron
	idempotencyRepo repository.IdempotencyRepository
	inventoryRepo   repository.InventoryRepository
}

// NewMaintenanceScheduler creates a new maintenance scheduler
func NewMaintenanceScheduler(
	idempotencyRepo repository.IdempotencyRepository,
	inventoryRepo repository.InventoryRepository,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:            cron.New(),
		idempotencyRepo: idempotencyRepo,
		inventoryRepo:   inventoryRepo,
	}
}

// Start registers the jobs and starts the scheduler
func (m *MaintenanceScheduler) Start() error {
	if _, err := m.cron.AddFunc("0 3 * * *", m.purgeExpiredIdempotencyKeys); err != nil {
		return err
	}
	if _, err := m.cron.AddFunc("0 8 * * *", m.reportLowStock); err != nil {
		return err
	}
	m.cron.Start()
	log.Println("Maintenance scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (m *MaintenanceScheduler) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *MaintenanceScheduler) purgeExpiredIdempotencyKeys() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.idempotencyRepo.DeleteExpired(ctx); err != nil {
		log.Printf("failed to purge expired idempotency keys: %v", err)
		return
	}
	log.Println("purged expired idempotency keys")
}

func (m *MaintenanceScheduler) reportLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// One log line per low item keeps the report grep-able on small deploys.
	items, err := m.inventoryRepo.AllLowStock(ctx)
	if err != nil {
		log.Printf("failed to build low stock report: %v", err)
		return
	}
	for _, item := range items {
		log.Printf("low stock: %s (%s) quantity=%d alert=%d", item.Name, item.Code, item.Quantity, item.QuantityAlert)
	}
}
