package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskWeatherPurge deletes weather snapshots past retention.
	TaskWeatherPurge = "weather:purge"
	// TaskInventoryAlertScan recomputes inventory alert flags so
	// time-driven transitions land without a write to the row.
	TaskInventoryAlertScan = "inventory:alert_scan"
)

// Cron specs, UTC.
const (
	CronWeatherPurge       = "0 3 * * *"
	CronInventoryAlertScan = "*/30 * * * *"
)

// NewWeatherPurgeTask constructs the purge task. No payload.
func NewWeatherPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskWeatherPurge, nil)
}

// NewInventoryAlertScanTask constructs the alert scan task. No payload.
func NewInventoryAlertScanTask() *asynq.Task {
	return asynq.NewTask(TaskInventoryAlertScan, nil)
}
