package heuristics

import (
	"strings"
	"testing"

	"qrguard/internal/urlparse"
)

func mustParse(t *testing.T, raw string) *urlparse.ParsedURL {
	t.Helper()
	u, err := urlparse.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", raw, err)
	}
	return u
}

func triggeredRules(t *testing.T, raw string) map[string]bool {
	t.Helper()
	_, findings := Evaluate(mustParse(t, raw))
	rules := make(map[string]bool, len(findings))
	for _, f := range findings {
		rules[f.Rule] = true
	}
	return rules
}

func TestEvaluateCleanURL(t *testing.T) {
	score, findings := Evaluate(mustParse(t, "https://www.google.com"))
	if score != 0 {
		t.Errorf("clean URL scored %.1f, want 0", score)
	}
	if len(findings) != 0 {
		t.Errorf("clean URL produced findings: %v", findings)
	}
}

func TestEvaluateTriggers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRules []string
	}{
		{
			name:      "IP literal over plain HTTP",
			input:     "http://192.168.1.1/login.php",
			wantRules: []string{"ip_literal_host", "insecure_scheme", "insecure_credential_page"},
		},
		{
			name:      "At symbol injection",
			input:     "https://user@evil.example.com",
			wantRules: []string{"at_symbol_injection"},
		},
		{
			name:      "Shortener host",
			input:     "https://bit.ly/x3Yz123",
			wantRules: []string{"url_shortener"},
		},
		{
			name:      "Executable download",
			input:     "https://cdn.example.com/files/update.exe",
			wantRules: []string{"risky_file_extension"},
		},
		{
			name:      "Phishing keyword cluster with leetspeak host",
			input:     "http://paypa1-verify-account.tk/signin",
			wantRules: []string{"phishing_keyword_cluster", "sensitive_keyword_in_host", "leetspeak_host"},
		},
		{
			name:      "Hidden redirect in fragment",
			input:     "https://example.com/page#https://evil.example.ga/steal",
			wantRules: []string{"fragment_redirect"},
		},
		{
			name:      "Open redirect in query",
			input:     "https://example.com/out?next=https%3A%2F%2Fevil.example.net",
			wantRules: []string{"query_redirect"},
		},
		{
			name:      "Deep subdomain nesting",
			input:     "https://secure.bank.com.evil.ga/home",
			wantRules: []string{"excessive_subdomains"},
		},
		{
			name:      "Non-standard port",
			input:     "http://example.com:8443/app",
			wantRules: []string{"nonstandard_port"},
		},
		{
			name:      "Keyword cluster survives uppercase path",
			input:     "https://example.com/VERIFY/ACCOUNT",
			wantRules: []string{"phishing_keyword_cluster"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triggeredRules(t, tt.input)
			for _, rule := range tt.wantRules {
				if !got[rule] {
					t.Errorf("rule %q did not trigger for %q (got %v)", rule, tt.input, got)
				}
			}
		})
	}
}

func TestEvaluateScoreCap(t *testing.T) {
	// A URL engineered to trip as many rules as possible must still be
	// bounded by the heuristic ceiling.
	nasty := "http://login@secure-verify-account-update1.evil" +
		strings.Repeat(".sub", 4) +
		".example.tk:4444/confirm/update.exe?next=https://more.evil.ga&" +
		strings.Repeat("p=1&", 9) + "x=%41%42%43%44"

	u, err := urlparse.Parse(nasty)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	score, findings := Evaluate(u)
	if score > MaxScore {
		t.Errorf("score %.1f exceeds cap %.1f", score, MaxScore)
	}
	if len(findings) < 6 {
		t.Errorf("expected many findings, got %d", len(findings))
	}
}

func TestEvaluateDeterministicOrder(t *testing.T) {
	input := "http://paypa1-verify-account.tk/signin"
	_, first := Evaluate(mustParse(t, input))
	for i := 0; i < 10; i++ {
		_, again := Evaluate(mustParse(t, input))
		if len(again) != len(first) {
			t.Fatalf("finding count changed between runs: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j].Rule != first[j].Rule {
				t.Fatalf("finding order changed at %d: %q vs %q", j, again[j].Rule, first[j].Rule)
			}
		}
	}
}
