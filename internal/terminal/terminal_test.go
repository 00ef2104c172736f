package terminal

import (
	"testing"
)

func TestParseCursorReport(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantRow int
		wantCol int
		wantErr bool
	}{
		{"origin", "\x1b[1;1R", 0, 0, false},
		{"typical", "\x1b[24;80R", 23, 79, false},
		{"leading noise", "x\x1b[5;10R", 4, 9, false},
		{"missing separator", "\x1b[5R", 0, 0, true},
		{"non-numeric", "\x1b[a;bR", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, err := parseCursorReport(tt.reply)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected an error for %q", tt.reply)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if row != tt.wantRow || col != tt.wantCol {
				t.Errorf("Expected (%d, %d), got (%d, %d)", tt.wantRow, tt.wantCol, row, col)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want Key
	}{
		{"carriage return", []byte{'\r'}, KeyReturn},
		{"newline", []byte{'\n'}, KeyReturn},
		{"del byte", []byte{0x7f}, KeyBackspace},
		{"backspace byte", []byte{0x08}, KeyBackspace},
		{"escape", []byte{0x1b}, KeyEscape},
		{"arrow up", []byte("\x1b[A"), KeyUp},
		{"page down", []byte("\x1b[6~"), KeyPageDown},
		{"plain text", []byte("a"), Key("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeKey(tt.raw); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestKeyConstantsDistinct(t *testing.T) {
	keys := []Key{
		KeyEscape, KeyBackspace, KeyReturn, KeyTab,
		KeyUp, KeyDown, KeyRight, KeyLeft,
		KeyEnd, KeyHome, KeyDelete, KeyPageUp, KeyPageDown,
	}

	seen := make(map[Key]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("Duplicate key constant %q", k)
		}
		seen[k] = true
	}
}

func TestKey_Printable(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{Key("a"), true},
		{Key("an"), true},
		{Key("ü"), true},
		{KeyEscape, false},
		{KeyUp, false},
		{KeyReturn, false},
		{KeyBackspace, false},
		{Key(""), false},
	}

	for _, tt := range tests {
		if got := tt.key.Printable(); got != tt.want {
			t.Errorf("Printable(%q): expected %v, got %v", tt.key, tt.want, got)
		}
	}
}
