package domain

// RunStatus classifies the result of one ingestion run.
type RunStatus string

const (
	// RunCompleted means the batch was deduplicated and upserted.
	RunCompleted RunStatus = "completed"
	// RunNoOp means every source failed or yielded nothing; the store
	// was left untouched.
	RunNoOp RunStatus = "noop"
	// RunFailed means the run itself failed (store write or a fault in
	// orchestration logic). The store is only ever mutated by the single
	// successful upsert call, so a failed run leaves it unchanged.
	RunFailed RunStatus = "failed"
)

// RunOutcome summarizes one fetch -> dedup -> upsert cycle.
// The scheduler only ever sees values of this type; no error from inside
// a run propagates past the orchestrator.
type RunOutcome struct {
	Status            RunStatus
	SourcesAttempted  int
	SourcesFailed     int
	UnitsWritten      int
	DuplicatesDropped int
}
