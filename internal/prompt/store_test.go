package prompt

import "testing"

func TestGetUnset(t *testing.T) {
	s := NewStore()
	if got := s.Get(3); got != "" {
		t.Errorf("Get(3) = %q, want empty", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := NewStore()
	s.Set(0, "first")
	s.Set(0, "second")
	if got := s.Get(0); got != "second" {
		t.Errorf("Get(0) = %q, want %q", got, "second")
	}
}

func TestAppendPreset(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		phrase  string
		want    string
	}{
		{
			name:    "empty prompt",
			initial: "",
			phrase:  "Declutter this room",
			want:    "Declutter this room",
		},
		{
			name:    "separating space inserted",
			initial: "make it bright",
			phrase:  "Add modern decor",
			want:    "make it bright Add modern decor",
		},
		{
			name:    "trailing space preserved",
			initial: "make it bright ",
			phrase:  "Add modern decor",
			want:    "make it bright Add modern decor",
		},
		{
			name:    "trailing newline counts as whitespace",
			initial: "line one\n",
			phrase:  "P",
			want:    "line one\nP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if tt.initial != "" {
				s.Set(0, tt.initial)
			}
			s.AppendPreset(0, tt.phrase)
			if got := s.Get(0); got != tt.want {
				t.Errorf("Get(0) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendPresetNeverDeduplicates(t *testing.T) {
	s := NewStore()
	s.AppendPreset(0, "P")
	s.AppendPreset(0, "P")
	if got := s.Get(0); got != "P P" {
		t.Errorf("double append = %q, want %q", got, "P P")
	}
}

func TestIsEmpty(t *testing.T) {
	s := NewStore()
	if !s.IsEmpty(0) {
		t.Error("IsEmpty(0) = false for unset index")
	}
	s.Set(0, "   \t")
	if !s.IsEmpty(0) {
		t.Error("IsEmpty(0) = false for whitespace-only prompt")
	}
	s.Set(0, "real prompt")
	if s.IsEmpty(0) {
		t.Error("IsEmpty(0) = true for non-empty prompt")
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.Set(0, "a")
	s.Set(1, "b")
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
}
