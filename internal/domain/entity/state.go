package entity

import "errors"

// State is the lifecycle of a soft-deletable row: Active -> Deleted.
// Rows are never physically removed; reads filter on StateActive.
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

var ErrAlreadyDeleted = errors.New("entity already deleted")

func (s State) IsActive() bool { return s == StateActive }

// MarkDeleted moves an active row to Deleted. Deleted is terminal.
func (s *State) MarkDeleted() error {
	if *s != StateActive {
		return ErrAlreadyDeleted
	}
	*s = StateDeleted
	return nil
}
