package duration

import (
	"math"
	"testing"
	"time"
)

func TestToMilliseconds(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"zero", 0, 0},
		{"half second", 0.5, 500},
		{"whole seconds", 3, 3000},
		{"just below threshold", 9.5, 9500},
		{"threshold is milliseconds", 10, 10},
		{"milliseconds", 700, 700},
		{"large milliseconds", 3000, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMilliseconds(tt.value); got != tt.want {
				t.Errorf("ToMilliseconds(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestToMillisecondsProperty(t *testing.T) {
	for d := 0.0; d < 10; d += 0.25 {
		if got := ToMilliseconds(d); got != d*1000 {
			t.Errorf("ToMilliseconds(%v) = %v, want %v", d, got, d*1000)
		}
	}
	for d := 10.0; d < 20000; d += 137 {
		if got := ToMilliseconds(d); got != d {
			t.Errorf("ToMilliseconds(%v) = %v, want unchanged", d, got)
		}
	}
}

// Normalising twice is not the same as normalising once for values that
// land below the threshold after the first pass.
func TestToMillisecondsNotIdempotent(t *testing.T) {
	once := ToMilliseconds(0.0078125)
	twice := ToMilliseconds(once)
	if once != 7.8125 {
		t.Fatalf("ToMilliseconds(0.0078125) = %v, want 7.8125", once)
	}
	if twice == once {
		t.Errorf("ToMilliseconds(ToMilliseconds(0.0078125)) = %v, expected it to differ from %v", twice, once)
	}
	if twice != 7812.5 {
		t.Errorf("ToMilliseconds(7.8125) = %v, want 7812.5", twice)
	}

	// Values already at or above the threshold are stable.
	if got := ToMilliseconds(ToMilliseconds(2)); got != 2000 {
		t.Errorf("ToMilliseconds(ToMilliseconds(2)) = %v, want 2000", got)
	}
}

func TestNormalizerThreshold(t *testing.T) {
	n := Normalizer{Threshold: 20}
	if got := n.ToMilliseconds(15); got != 15000 {
		t.Errorf("ToMilliseconds(15) with threshold 20 = %v, want 15000", got)
	}
	if got := n.ToMilliseconds(20); got != 20 {
		t.Errorf("ToMilliseconds(20) with threshold 20 = %v, want 20", got)
	}
	if got := n.ToSeconds(500); got != 0.5 {
		t.Errorf("ToSeconds(500) = %v, want 0.5", got)
	}
	if got := n.ToSeconds(2); got != 2 {
		t.Errorf("ToSeconds(2) = %v, want 2", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		value float64
		want  time.Duration
	}{
		{0.2, 200 * time.Millisecond},
		{700, 700 * time.Millisecond},
		{-5, 0},
		{0, 0},
		{1e13, time.Duration(maxMilliseconds) * time.Millisecond},
		{math.Inf(1), time.Duration(maxMilliseconds) * time.Millisecond},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := (Normalizer{}).Duration(tt.value); got != tt.want {
			t.Errorf("Duration(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
