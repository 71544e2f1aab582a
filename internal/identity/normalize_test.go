package identity

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "alice", "alice"},
		{"uppercase", "Alice", "alice"},
		{"diacritics", "Bảo", "bao"},
		{"vietnamese full name", "Nguyễn Văn Bảo", "nguyen van bao"},
		{"extra spaces", "  anna   maria ", "anna maria"},
		{"czech", "Jiří", "jiri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	if got := RemoveDiacritics("Trần Quốc Bảo"); got != "Tran Quoc Bao" {
		t.Errorf("RemoveDiacritics() = %q, want %q", got, "Tran Quoc Bao")
	}
}
