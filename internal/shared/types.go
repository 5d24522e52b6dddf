package shared

// Asynq task type identifiers.
const (
	TypeProcessImport = "catalog:process_import"
)

// Queue names, highest priority first.
const (
	QueueDefault = "default"
	QueueLow     = "low"
)
