package lookup

import "testing"

func TestScoreTLD(t *testing.T) {
	tests := []struct {
		tld  string
		want int
	}{
		{"com", 0},
		{"org", 0},
		{"de", 0},
		{"tk", 10},
		{"ml", 10},
		{"xyz", 8},
		{"info", 4},
		{"TK", 10},
		{".top", 8},
		{"", 0},
		// Obscure but legitimate TLDs get the small default, never the max.
		{"museum", tldDefaultScore},
		{"pizza", tldDefaultScore},
	}

	for _, tt := range tests {
		if got := ScoreTLD(tt.tld); got != tt.want {
			t.Errorf("ScoreTLD(%q) = %d, want %d", tt.tld, got, tt.want)
		}
	}
}

func TestScoreTLDBounds(t *testing.T) {
	for tld, score := range tldHighRisk {
		if score < 0 || score > TLDMaxScore {
			t.Errorf("high-risk TLD %q score %d outside [0,%d]", tld, score, TLDMaxScore)
		}
	}
	for tld, score := range tldModerateRisk {
		if score < 0 || score > TLDMaxScore {
			t.Errorf("moderate TLD %q score %d outside [0,%d]", tld, score, TLDMaxScore)
		}
	}
}
