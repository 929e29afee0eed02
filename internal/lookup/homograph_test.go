package lookup

import "testing"

func TestDetectHomographMixedScript(t *testing.T) {
	tests := []struct {
		name string
		host string
		want bool
	}{
		// Cyrillic а in an otherwise Latin host.
		{"Latin with Cyrillic a", "pаypal.com", true},
		// Greek omicron in an otherwise Latin host.
		{"Latin with Greek omicron", "gοogle.com", true},
		{"Zero-width space", "pay\u200Bpal.com", true},
		{"Soft hyphen", "exam\u00ADple.com", true},
		{"Plain ASCII", "paypal.com", false},
		// Single consistent script must not trigger.
		{"Pure Cyrillic host", "яндекс.рф", false},
		{"Pure Japanese host", "日本語.jp", false},
		{"German umlaut host", "münchen.de", false},
		{"Empty host", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reasons := DetectHomograph(tt.host)
			if got != tt.want {
				t.Errorf("DetectHomograph(%q) = %v (reasons %v), want %v", tt.host, got, reasons, tt.want)
			}
			if got && len(reasons) == 0 {
				t.Error("triggered detection must report at least one reason")
			}
		})
	}
}
