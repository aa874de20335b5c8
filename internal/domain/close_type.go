package domain

import "fmt"

// CloseType enumerates the ways a ticket can be closed.
type CloseType string

const (
	CloseResolve    CloseType = "RESOLVE"
	CloseDelete     CloseType = "DELETE"
	CloseDuplicate  CloseType = "DUPLICATE"
	CloseForceClose CloseType = "FORCE_CLOSE"
)

// ToStatus maps the close type to the resulting ticket status.
func (c CloseType) ToStatus() TicketStatus {
	if c == CloseDelete {
		return TicketStatusDeleted
	}
	return TicketStatusClosed
}

// ParseCloseType validates a raw close type value.
func ParseCloseType(raw string) (CloseType, error) {
	switch CloseType(raw) {
	case CloseResolve, CloseDelete, CloseDuplicate, CloseForceClose:
		return CloseType(raw), nil
	}
	return "", fmt.Errorf("unknown close type %q", raw)
}
