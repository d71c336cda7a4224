package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 50}
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: 20},
		{in: -3, want: 20},
		{in: 7, want: 7},
		{in: 500, want: 50},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.in, cfg); got != tt.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize without defaults = %d, want 1", got)
	}
}
