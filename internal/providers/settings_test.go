package providers

import (
	"testing"

	"mediastudio/internal/domain"
)

func TestClampPullsValuesToBounds(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Settings
		want domain.Settings
	}{
		{
			name: "oversized dimensions",
			in:   domain.Settings{Width: 4096, Height: 8192},
			want: domain.Settings{Width: 2048, Height: 2048},
		},
		{
			name: "undersized dimensions",
			in:   domain.Settings{Width: 16, Height: 100},
			want: domain.Settings{Width: 256, Height: 256},
		},
		{
			name: "steps and cfg",
			in:   domain.Settings{Steps: 500, CfgScale: 35},
			want: domain.Settings{Steps: 150, CfgScale: 20},
		},
		{
			name: "samples",
			in:   domain.Settings{Samples: 10},
			want: domain.Settings{Samples: 4},
		},
		{
			name: "in range untouched",
			in:   domain.Settings{Width: 1024, Height: 768, Steps: 30, CfgScale: 7.5, Samples: 2},
			want: domain.Settings{Width: 1024, Height: 768, Steps: 30, CfgScale: 7.5, Samples: 2},
		},
		{
			name: "zero values stay zero for adapter defaults",
			in:   domain.Settings{},
			want: domain.Settings{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Clamp(tc.in, DefaultImageBounds)
			if got != tc.want {
				t.Fatalf("Clamp() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestClampMaxDuration(t *testing.T) {
	b := Bounds{MaxDuration: 60}
	got := Clamp(domain.Settings{Duration: 300}, b)
	if got.Duration != 60 {
		t.Fatalf("duration not clamped: %d", got.Duration)
	}
	got = Clamp(domain.Settings{Duration: 30}, b)
	if got.Duration != 30 {
		t.Fatalf("in-range duration changed: %d", got.Duration)
	}
}
