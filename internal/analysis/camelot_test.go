package analysis

import "testing"

func TestParseCamelotKey(t *testing.T) {
	tests := []struct {
		in      string
		number  int
		minor   bool
		wantErr bool
	}{
		{"8A", 8, true, false},
		{"8B", 8, false, false},
		{"1A", 1, true, false},
		{"12B", 12, false, false},
		{"0A", 0, false, true},
		{"13B", 0, false, true},
		{"8C", 0, false, true},
		{"", 0, false, true},
		{"A8", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := ParseCamelotKey(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCamelotKey(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCamelotKey(%q) unexpected error: %v", tt.in, err)
			}
			if k.Number != tt.number || k.Minor != tt.minor {
				t.Errorf("ParseCamelotKey(%q) = %+v, want number=%d minor=%v", tt.in, k, tt.number, tt.minor)
			}
			if k.String() != tt.in {
				t.Errorf("String() = %q, want %q", k.String(), tt.in)
			}
		})
	}
}

func TestCamelotDistance(t *testing.T) {
	tests := []struct {
		name   string
		k1, k2 string
		want   int
	}{
		{"identical", "8A", "8A", 0},
		{"relative major minor", "8A", "8B", 1},
		{"adjacent same mode up", "8A", "9A", 1},
		{"adjacent same mode down", "8B", "7B", 1},
		{"wheel wrap", "12A", "1A", 1},
		{"two steps", "8A", "10A", 2},
		{"opposite side", "1A", "7A", 6},
		{"cross mode non parallel", "8A", "9B", 6},
		{"cross mode far", "3A", "10B", 6},
		{"invalid key", "8A", "99X", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CamelotDistance(tt.k1, tt.k2); got != tt.want {
				t.Errorf("CamelotDistance(%q, %q) = %d, want %d", tt.k1, tt.k2, got, tt.want)
			}
			if got := CamelotDistance(tt.k2, tt.k1); got != tt.want {
				t.Errorf("distance not symmetric: CamelotDistance(%q, %q) = %d, want %d", tt.k2, tt.k1, got, tt.want)
			}
		})
	}
}

func TestCamelotDistanceRange(t *testing.T) {
	keys := make([]string, 0, 24)
	for n := 1; n <= 12; n++ {
		keys = append(keys, CamelotKey{Number: n, Minor: true}.String())
		keys = append(keys, CamelotKey{Number: n, Minor: false}.String())
	}

	for _, a := range keys {
		for _, b := range keys {
			d := CamelotDistance(a, b)
			if d < 0 || d > 6 {
				t.Fatalf("CamelotDistance(%q, %q) = %d, outside [0, 6]", a, b, d)
			}
			if a == b && d != 0 {
				t.Fatalf("CamelotDistance(%q, %q) = %d, want 0", a, b, d)
			}
		}
	}
}

func TestCompatibleKeys(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"8A", []string{"8A", "8B", "7A", "9A"}},
		{"1B", []string{"1B", "1A", "12B", "2B"}},
		{"12A", []string{"12A", "12B", "11A", "1A"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := CompatibleKeys(tt.key)
			if len(got) != len(tt.want) {
				t.Fatalf("CompatibleKeys(%q) = %v, want %v", tt.key, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CompatibleKeys(%q)[%d] = %q, want %q", tt.key, i, got[i], tt.want[i])
				}
			}
			for _, k := range got {
				if !IsCompatible(tt.key, k) {
					t.Errorf("IsCompatible(%q, %q) = false, want true", tt.key, k)
				}
			}
		})
	}

	if got := CompatibleKeys("nope"); got != nil {
		t.Errorf("CompatibleKeys on invalid key = %v, want nil", got)
	}
}
