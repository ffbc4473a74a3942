package transfer

import "time"

// Phase identifies where the engine is in its run. Transitions are strictly
// sequential at the macro level; only the data phase runs concurrent work
// internally.
type Phase string

const (
	PhaseInitializing         Phase = "initializing"
	PhaseCreatingSchema       Phase = "creating_schema"
	PhaseCreatingTables       Phase = "creating_tables"
	PhaseDisablingConstraints Phase = "disabling_constraints"
	PhaseTransferringData     Phase = "transferring_data"
	PhaseEnablingConstraints  Phase = "enabling_constraints"
	PhaseCreatingObjects      Phase = "creating_objects"
	PhaseVerifyingData        Phase = "verifying_data"
	PhaseCompleted            Phase = "completed"
	PhaseStopping             Phase = "stopping"
	PhaseStopped              Phase = "stopped"
	PhaseFailed               Phase = "failed"
)

// Progress is the engine's run snapshot. The engine owns the single mutable
// instance behind its mutex; observers only ever see copies, so a handed-out
// snapshot never changes after delivery.
type Progress struct {
	Phase            Phase
	CurrentTable     string
	CurrentOperation string
	TablesCompleted  int
	TotalTables      int
	RowsTransferred  int64
	TotalRows        int64
	Errors           []string
	Warnings         []string
	StartedAt        time.Time
	RemainingSeconds float64
}

// clone returns a deep copy safe to hand to observers.
func (p Progress) clone() Progress {
	c := p
	c.Errors = append([]string(nil), p.Errors...)
	c.Warnings = append([]string(nil), p.Warnings...)
	return c
}
