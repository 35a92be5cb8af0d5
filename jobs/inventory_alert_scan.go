package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/agritrack/agritrack/internal/inventory"
)

// InventoryAlertScanJob rederives stock statuses for items whose expiry
// date has entered the alert window since the last save.
type InventoryAlertScanJob struct {
	Inventory *inventory.Service
	Logger    *slog.Logger
}

// NewInventoryAlertScanJob wires dependencies for the scan handler.
func NewInventoryAlertScanJob(inventorySvc *inventory.Service, logger *slog.Logger) *InventoryAlertScanJob {
	return &InventoryAlertScanJob{Inventory: inventorySvc, Logger: logger}
}

// Handle processes TaskInventoryAlertScan tasks.
func (j *InventoryAlertScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("inventory alert scan: handler not configured")
	}
	updated, err := j.Inventory.RefreshAlerts(ctx)
	if err != nil {
		j.Logger.Error("inventory alert scan", slog.Any("error", err))
		return err
	}
	j.Logger.Info("inventory alert scan complete", slog.Int("updated", updated))
	return nil
}
