package schedule

import "testing"

func TestClassInfoIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		ci   ClassInfo
		want bool
	}{
		{"all empty", ClassInfo{}, true},
		{"name only", ClassInfo{Name: "Biology"}, false},
		{"teacher only", ClassInfo{Teacher: "Okafor"}, false},
		{"room only", ClassInfo{Room: "112"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ci.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassInfoDisplayName(t *testing.T) {
	if got := (ClassInfo{Name: "AP Physics"}).DisplayName(); got != "AP Physics" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (ClassInfo{Teacher: "Okafor"}).DisplayName(); got != "Period" {
		t.Errorf("DisplayName() without name = %q, want generic label", got)
	}
}

func TestClassInfoDetails(t *testing.T) {
	tests := []struct {
		name string
		ci   ClassInfo
		want string
	}{
		{"both", ClassInfo{Teacher: "Okafor", Room: "112"}, "Okafor · 112"},
		{"teacher only", ClassInfo{Teacher: "Okafor"}, "Okafor"},
		{"room only", ClassInfo{Room: "112"}, "112"},
		{"neither", ClassInfo{Name: "Biology"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ci.Details(); got != tt.want {
				t.Errorf("Details() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsReservedPeriod(t *testing.T) {
	for _, n := range []int{PeriodLunch, PeriodAccess} {
		if !IsReservedPeriod(n) {
			t.Errorf("IsReservedPeriod(%d) = false, want true", n)
		}
	}
	for _, n := range []int{0, 1, 7} {
		if IsReservedPeriod(n) {
			t.Errorf("IsReservedPeriod(%d) = true, want false", n)
		}
	}
}
