package validators

import "testing"

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ana Ruiz  ", "Ana Ruiz"},
		{"<b>Entregar</b> pronto", "Entregar pronto"},
		{"<script>alert(1)</script>", "alert(1)"},
		{"sin cambios", "sin cambios"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Fatalf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
