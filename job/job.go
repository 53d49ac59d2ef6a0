package job

import (
	"time"

	"github.com/xraph/bossbat/id"
)

// Occurrence is one execution of a job won by this process.
type Occurrence struct {
	ID       id.OccurrenceID
	WorkerID id.WorkerID

	// Name is the job name decoded from the expired trigger key.
	Name string

	// Demand is true when the occurrence came from a demand key rather
	// than the recurring trigger key.
	Demand bool

	// Definition is a per-occurrence clone of the registered definition.
	Definition *Definition

	TriggeredAt time.Time
}

// NewOccurrence builds an occurrence for def, cloning it.
func NewOccurrence(workerID id.WorkerID, def Definition, demand bool) *Occurrence {
	return &Occurrence{
		ID:          id.NewOccurrenceID(),
		WorkerID:    workerID,
		Name:        def.Name,
		Demand:      demand,
		Definition:  def.Clone(),
		TriggeredAt: time.Now().UTC(),
	}
}
