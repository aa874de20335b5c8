package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloseTypeToStatus(t *testing.T) {
	tests := []struct {
		closeType CloseType
		want      TicketStatus
	}{
		{CloseResolve, TicketStatusClosed},
		{CloseDuplicate, TicketStatusClosed},
		{CloseForceClose, TicketStatusClosed},
		{CloseDelete, TicketStatusDeleted},
	}
	for _, tt := range tests {
		t.Run(string(tt.closeType), func(t *testing.T) {
			require.Equal(t, tt.want, tt.closeType.ToStatus())
		})
	}
}

func TestParseCloseType(t *testing.T) {
	for _, raw := range []string{"RESOLVE", "DELETE", "DUPLICATE", "FORCE_CLOSE"} {
		parsed, err := ParseCloseType(raw)
		require.NoError(t, err)
		require.Equal(t, CloseType(raw), parsed)
	}

	_, err := ParseCloseType("resolve")
	require.Error(t, err, "close types are case sensitive on the wire")
	_, err = ParseCloseType("ARCHIVE")
	require.Error(t, err)
}
