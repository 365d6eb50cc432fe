package models

// JobStatus summarizes a batch analysis job.
type JobStatus struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CompletedBatches int    `json:"completed_batches"`
	TotalBatches     int    `json:"total_batches"`
}

// JobMessage is one unit of batch work carried through SQS.
type JobMessage struct {
	JobID      string `json:"job_id"`
	Mode       string `json:"mode"`        // "analyze" or "probe"
	BatchIndex int    `json:"batch_index"` // 0-based
	NumFens    int    `json:"num_fens"`    // positions per batch
}
