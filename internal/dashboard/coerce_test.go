package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerceTime(t *testing.T) {
	ref := time.Date(2026, 5, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		input  interface{}
		want   time.Time
		wantOK bool
	}{
		{
			name:   "native time",
			input:  ref,
			want:   ref,
			wantOK: true,
		},
		{
			name:   "pointer to time",
			input:  &ref,
			want:   ref,
			wantOK: true,
		},
		{
			name:   "nil pointer",
			input:  (*time.Time)(nil),
			wantOK: false,
		},
		{
			name:   "seconds and nanoseconds map",
			input:  map[string]interface{}{"seconds": float64(ref.Unix()), "nanoseconds": float64(0)},
			want:   ref,
			wantOK: true,
		},
		{
			name:   "underscore-prefixed map keys",
			input:  map[string]interface{}{"_seconds": float64(ref.Unix()), "_nanoseconds": float64(0)},
			want:   ref,
			wantOK: true,
		},
		{
			name:   "map without seconds",
			input:  map[string]interface{}{"nanoseconds": float64(12)},
			wantOK: false,
		},
		{
			name:   "epoch seconds",
			input:  float64(ref.Unix()),
			want:   ref,
			wantOK: true,
		},
		{
			name:   "epoch milliseconds",
			input:  float64(ref.UnixMilli()),
			want:   ref,
			wantOK: true,
		},
		{
			name:   "rfc3339 string",
			input:  ref.Format(time.RFC3339),
			want:   ref,
			wantOK: true,
		},
		{
			name:   "rfc3339 nano string",
			input:  ref.Format(time.RFC3339Nano),
			want:   ref,
			wantOK: true,
		},
		{
			name:   "numeric string epoch",
			input:  "1767351845",
			want:   time.Unix(1767351845, 0),
			wantOK: true,
		},
		{
			name:   "empty string",
			input:  "",
			wantOK: false,
		},
		{
			name:   "garbage string",
			input:  "yesterday-ish",
			wantOK: false,
		},
		{
			name:   "unsupported type",
			input:  struct{}{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceTime(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want.Unix(), got.Unix())
			}
		})
	}
}
