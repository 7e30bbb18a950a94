package log

import "testing"

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryCreate, "CREATE"},
		{CategorySubscribe, "SUBSCRIBE"},
		{CategoryUnsubscribe, "UNSUBSCRIBE"},
		{CategoryUpdate, "UPDATE"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := KindMap.String(); got != "MAP" {
		t.Errorf("KindMap.String() = %q, want MAP", got)
	}
	if got := KindValue.String(); got != "VALUE" {
		t.Errorf("KindValue.String() = %q, want VALUE", got)
	}
	if got := Kind(42).String(); got != "UNKNOWN" {
		t.Errorf("Kind(42).String() = %q, want UNKNOWN", got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"create", CategoryCreate, true},
		{"SUBSCRIBE", CategorySubscribe, true},
		{"sub", CategorySubscribe, true},
		{"unsub", CategoryUnsubscribe, true},
		{"Update", CategoryUpdate, true},
		{"bogus", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseCategory(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
