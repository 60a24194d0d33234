package engineer

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"canonical form unchanged", "00001", "00001", false},
		{"short form zero padded", "1", "00001", false},
		{"full-width digits narrowed", "０１２３４", "01234", false},
		{"full-width short form", "７", "00007", false},
		{"surrounding whitespace", " 00042 ", "00042", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"too long", "123456", "", true},
		{"non-digit", "12a45", "", true},
		{"reserved id", "00000", "", true},
		{"reserved id short form", "0", "", true},
		{"reserved id full-width", "０００００", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeID(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeID(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Full-width and half-width spellings of the same digits must normalize
// to the same canonical ID for duplicate comparison.
func TestNormalizeID_WidthEquivalence(t *testing.T) {
	wide, err := NormalizeID("０１２３４")
	if err != nil {
		t.Fatalf("NormalizeID full-width error = %v", err)
	}
	narrow, err := NormalizeID("01234")
	if err != nil {
		t.Fatalf("NormalizeID half-width error = %v", err)
	}
	if wide != narrow {
		t.Errorf("full-width %q != half-width %q", wide, narrow)
	}
}
