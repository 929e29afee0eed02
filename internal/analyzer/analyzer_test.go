package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"qrguard/internal/lookup"
	"qrguard/internal/ml"
	"qrguard/internal/models"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestAnalyzeVerdicts(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name        string
		input       string
		wantVerdict models.Verdict
		scoreMin    int
		scoreMax    int
	}{
		{
			name:        "Well-known benign site",
			input:       "https://www.google.com",
			wantVerdict: models.VerdictSafe,
			scoreMin:    0,
			scoreMax:    15,
		},
		{
			name:        "Benign repository URL",
			input:       "https://github.com/user/repo",
			wantVerdict: models.VerdictSafe,
			scoreMin:    0,
			scoreMax:    20,
		},
		{
			name:        "Typosquat with risky TLD and insecure login path",
			input:       "http://paypa1-verify-account.tk/signin?auth=xyz",
			wantVerdict: models.VerdictMalicious,
			scoreMin:    60,
			scoreMax:    100,
		},
		{
			name:        "Shortener over plain HTTP lands in the middle band",
			input:       "http://bit.ly/x3Yz123",
			wantVerdict: models.VerdictSuspicious,
			scoreMin:    30,
			scoreMax:    59,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.input)

			if got.Verdict != tt.wantVerdict {
				t.Errorf("Verdict = %q (score %d, flags %v), want %q",
					got.Verdict, got.Score, got.Flags, tt.wantVerdict)
			}
			if got.Score < tt.scoreMin || got.Score > tt.scoreMax {
				t.Errorf("Score %d not in range [%d, %d]", got.Score, tt.scoreMin, tt.scoreMax)
			}
		})
	}
}

func TestAnalyzeBlockedSchemeShortCircuit(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, input := range []string{
		"javascript:alert(1)",
		"data:text/html;base64,PHNjcmlwdD4=",
		"vbscript:msgbox(1)",
	} {
		got := a.Analyze(input)
		if got.Verdict != models.VerdictMalicious {
			t.Errorf("Analyze(%q).Verdict = %q, want malicious", input, got.Verdict)
		}
		if got.Score != 100 {
			t.Errorf("Analyze(%q).Score = %d, want 100", input, got.Score)
		}
		if len(got.Flags) != 1 {
			t.Errorf("Analyze(%q) flags = %v, want exactly one", input, got.Flags)
		}
	}
}

func TestAnalyzeDenylistShortCircuit(t *testing.T) {
	a := newTestAnalyzer(t)

	// The host is on the bundled denylist; the verdict must be malicious
	// with score 100 regardless of what the other signals would say.
	got := a.Analyze("https://www.fedex-redelivery.tk/track?id=1")
	if got.Verdict != models.VerdictMalicious {
		t.Fatalf("Verdict = %q, want malicious", got.Verdict)
	}
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if !got.Intel.IsKnownBad || got.Intel.Confidence != models.IntelConfirmed {
		t.Errorf("Intel = %+v, want confirmed known-bad", got.Intel)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", got.Confidence)
	}
}

func TestAnalyzeUnparseableInput(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name  string
		input string
	}{
		{"Oversized input", "https://example.com/?q=" + strings.Repeat("a", 3000)},
		{"Control characters", "https://exam\x00ple.com"},
		{"Unsupported scheme", "ftp://example.com/file"},
		{"Empty input", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.input)
			if got.Verdict != models.VerdictUnknown {
				t.Errorf("Verdict = %q, want unknown", got.Verdict)
			}
			if got.Score != 0 {
				t.Errorf("Score = %d, want 0", got.Score)
			}
			if len(got.Flags) != 1 || !strings.Contains(got.Flags[0], "could not be parsed") {
				t.Errorf("Flags = %v, want single parse-failure flag", got.Flags)
			}
		})
	}
}

func TestAnalyzeScoreAlwaysInRange(t *testing.T) {
	a := newTestAnalyzer(t)

	corpus := []string{
		"https://www.google.com",
		"https://en.wikipedia.org/wiki/QR_code",
		"http://192.168.1.1/login.php",
		"http://paypa1-verify-account.tk/signin",
		"https://secure.bank.com.evil.ga/login",
		"http://bit.ly/abc",
		"https://xn--80ak6aa92e.com/signin",
		"example.com",
		"http://amaz0n.ml/tracking?order=9f2k1",
		"http://login@203.0.113.9:4444/update.exe",
	}

	for _, raw := range corpus {
		got := a.Analyze(raw)
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("Analyze(%q).Score = %d outside [0,100]", raw, got.Score)
		}

		// Verdict must be consistent with the thresholds.
		cfg := DefaultConfig()
		want := models.VerdictSafe
		switch {
		case got.Score >= cfg.SuspiciousThreshold:
			want = models.VerdictMalicious
		case got.Score >= cfg.SafeThreshold:
			want = models.VerdictSuspicious
		}
		if got.Verdict != want {
			t.Errorf("Analyze(%q): verdict %q inconsistent with score %d", raw, got.Verdict, got.Score)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Analyze(%q).Confidence = %v outside [0,1]", raw, got.Confidence)
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := newTestAnalyzer(t)

	inputs := []string{
		"https://www.google.com",
		"http://paypa1-verify-account.tk/signin",
		"javascript:alert(1)",
		strings.Repeat("x", 5000),
	}

	for _, raw := range inputs {
		first := a.Analyze(raw)
		for i := 0; i < 5; i++ {
			again := a.Analyze(raw)
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("Analyze(%q) is not idempotent:\nfirst: %+v\nagain: %+v", raw, first, again)
			}
		}
	}
}

func TestAnalyzeSubScoreCeilings(t *testing.T) {
	a := newTestAnalyzer(t)
	cfg := DefaultConfig()

	// Engineered to push every signal hard.
	got := a.Analyze("http://paypa1-secure-login-verify.example.tk:4444/account/update.exe?next=https://more.evil.ga")

	d := got.Details
	if d.HeuristicScore > cfg.HeuristicWeight {
		t.Errorf("heuristic %.1f exceeds ceiling %.1f", d.HeuristicScore, cfg.HeuristicWeight)
	}
	if d.MLScore > cfg.MLWeight {
		t.Errorf("ml %.1f exceeds ceiling %.1f", d.MLScore, cfg.MLWeight)
	}
	if d.BrandScore > cfg.BrandWeight {
		t.Errorf("brand %.1f exceeds ceiling %.1f", d.BrandScore, cfg.BrandWeight)
	}
	if d.TLDScore > cfg.TLDWeight {
		t.Errorf("tld %.1f exceeds ceiling %.1f", d.TLDScore, cfg.TLDWeight)
	}
}

func TestAnalyzeHomographHost(t *testing.T) {
	a := newTestAnalyzer(t)

	// Punycode for a Cyrillic look-alike of a Latin brand host.
	got := a.Analyze("https://xn--80ak6aa92e.com/signin")

	foundHomographFlag := false
	for _, f := range got.Flags {
		if strings.Contains(f, "look-alike") || strings.Contains(f, "punycode") ||
			strings.Contains(f, "international characters") {
			foundHomographFlag = true
		}
	}
	if !foundHomographFlag {
		t.Errorf("expected a homograph/punycode flag, got %v", got.Flags)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults are valid", func(c *Config) {}, false},
		{"Weights not summing to 100", func(c *Config) { c.MLWeight = 50 }, true},
		{"Negative weight", func(c *Config) { c.BrandWeight = -20; c.HeuristicWeight = 80 }, true},
		{"Thresholds inverted", func(c *Config) { c.SafeThreshold = 70 }, true},
		{"Suspicious threshold above 100", func(c *Config) { c.SuspiciousThreshold = 150 }, true},
		{"Reweighted but consistent", func(c *Config) {
			c.HeuristicWeight = 50
			c.MLWeight = 20
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewWithTablesRejectsNil(t *testing.T) {
	if _, err := NewWithTables(DefaultConfig(), nil, lookup.DefaultThreatIntel(), ml.DefaultEnsemble()); err == nil {
		t.Error("nil brand index accepted")
	}
	if _, err := NewWithTables(DefaultConfig(), lookup.DefaultBrandIndex(), nil, ml.DefaultEnsemble()); err == nil {
		t.Error("nil threat intel accepted")
	}
}

func TestAnalyzeSubstituteTables(t *testing.T) {
	intel, err := lookup.NewThreatIntel([]string{"tiny-denylist.example"}, 0.01)
	if err != nil {
		t.Fatalf("NewThreatIntel failed: %v", err)
	}
	brands := lookup.NewBrandIndex([]lookup.Brand{{Name: "acme", Domain: "acme.example"}})

	a, err := NewWithTables(DefaultConfig(), brands, intel, ml.DefaultEnsemble())
	if err != nil {
		t.Fatalf("NewWithTables failed: %v", err)
	}

	if got := a.Analyze("https://tiny-denylist.example/x"); got.Score != 100 {
		t.Errorf("substituted denylist not honored, score %d", got.Score)
	}
	if got := a.Analyze("https://acm3.example/login"); got.Brand == nil {
		t.Error("substituted brand table not honored")
	}
}
