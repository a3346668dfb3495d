package cli_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Lllllllleong/inspectionrequest/internal/cli"
	"github.com/stretchr/testify/assert"
)

func TestSetVerbosity(t *testing.T) {
	tests := map[string]struct {
		pattern []int
	}{
		"Info":            {pattern: []int{1}},
		"None":            {pattern: []int{0}},
		"Info none":       {pattern: []int{1, 0}},
		"Info debug":      {pattern: []int{1, 2}},
		"Info debug none": {pattern: []int{1, 2, 0}},
		"Debug":           {pattern: []int{2}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for _, p := range tc.pattern {
				cli.SetVerbosity(p)

				want := cli.DefaultLogLevel
				switch p {
				case 0:
				case 1:
					want = slog.LevelInfo
				default:
					want = slog.LevelDebug
				}
				assert.True(t, slog.Default().Enabled(context.Background(), want))
				assert.False(t, slog.Default().Enabled(context.Background(), want-1))
			}
		})
	}
}
