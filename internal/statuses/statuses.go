package statuses

const (
	StatusPending  = "pending"
	StatusAnalyzed = "analyzed"
	StatusFailed   = "failed"
)
