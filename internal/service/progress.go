package service

import "fmt"

// Phase is a state of the batch state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseProcessing
	PhaseSaving
	PhaseDone
	PhaseFailed
)

var phaseNames = [...]string{"idle", "loading", "processing", "saving", "done", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Progress is one update of the batch, sent to the display.
// Row is 1-based and only meaningful while processing; Total is the number
// of data rows once the source has been loaded.
type Progress struct {
	Phase Phase
	Row   int
	Total int
}
