package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTicket(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected string
	}{
		{"singular", 1, "Your art got 1 new reaction!"},
		{"plural", 2, "Your art got 2 new reactions!"},
		{"many", 37, "Your art got 37 new reactions!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, controls := renderTicket(tt.count)
			assert.Equal(t, tt.expected, text)
			require.Len(t, controls, 1)
			require.Len(t, controls[0], 1)
			assert.Equal(t, "show_reactions", controls[0][0].Action)
		})
	}
}
