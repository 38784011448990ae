package cases

import "propcare/internal/pkg/apperr"

type Status string

const (
	StatusNew        Status = "New"
	StatusInReview   Status = "In Review"
	StatusQuoted     Status = "Quoted"
	StatusScheduled  Status = "Scheduled"
	StatusInProgress Status = "In Progress"
	StatusOnHold     Status = "On Hold"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseIntake
	PhaseAssignment
	PhaseExecution
	PhaseClosure
)

var phases = map[Status]Phase{
	StatusNew:        PhaseIntake,
	StatusInReview:   PhaseAssignment,
	StatusQuoted:     PhaseAssignment,
	StatusScheduled:  PhaseExecution,
	StatusInProgress: PhaseExecution,
	StatusOnHold:     PhaseExecution,
	StatusResolved:   PhaseClosure,
	StatusClosed:     PhaseClosure,
}

func (s Status) Phase() Phase { return phases[s] }

func (s Status) Valid() bool { return s.Phase() != PhaseUnknown }

func (s Status) IsTerminal() bool { return s == StatusResolved || s == StatusClosed }

// CanTransition reports whether from -> to is an edge of the lifecycle:
// any move to a later phase, sideways moves inside Assignment and Execution,
// nothing back into Intake and nothing out of a terminal status.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.IsTerminal() || to.Phase() == PhaseIntake {
		return false
	}
	if to.Phase() > from.Phase() {
		return true
	}
	if to.Phase() == from.Phase() {
		return from.Phase() == PhaseAssignment || from.Phase() == PhaseExecution
	}
	return false
}

func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return apperr.InvalidTransition("cannot move case from %s to %s", from, to)
	}
	return nil
}

type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityHigh || p == PriorityUrgent
}
