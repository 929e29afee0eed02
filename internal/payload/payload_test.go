package payload

import (
	"reflect"
	"strings"
	"testing"

	"qrguard/internal/analyzer"
	"qrguard/internal/models"
)

func newTestPayloadAnalyzer(t *testing.T) (*Analyzer, *analyzer.Analyzer) {
	t.Helper()
	urls, err := analyzer.New(analyzer.DefaultConfig())
	if err != nil {
		t.Fatalf("analyzer.New failed: %v", err)
	}
	return New(urls), urls
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"WIFI:T:WPA;S:HomeNet;P:hunter2;;", KindWiFi},
		{"wifi:S:lowercase;;", KindWiFi},
		{"BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEND:VCARD", KindVCard},
		{"SMSTO:5000:Your package is waiting", KindSMS},
		{"sms:+15551234567", KindSMS},
		{"TEL:+15551234567", KindTel},
		{"mailto:support@example.com", KindEmail},
		{"MATMSG:TO:a@b.c;SUB:hi;BODY:yo;;", KindEmail},
		{"bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", KindCrypto},
		{"monero:44AFFq5kSiGBoZ", KindCrypto},
		{"https://example.com/pay", KindURL},
		{"HTTP://EXAMPLE.COM", KindURL},
		{"example.com/pay", KindURL},
		{"just some text on a poster", KindText},
		{"v1.2.3 build artifact", KindText},
	}

	for _, tt := range tests {
		if got := Classify(tt.input); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAnalyzeNonURLPayloads(t *testing.T) {
	p, _ := newTestPayloadAnalyzer(t)

	tests := []struct {
		name        string
		input       string
		wantVerdict models.Verdict
		scoreMin    int
		scoreMax    int
		wantFlag    string
	}{
		{
			name:        "WPA WiFi with password is benign",
			input:       "WIFI:T:WPA;S:HomeNet;P:hunter2;;",
			wantVerdict: models.VerdictSafe,
			scoreMin:    0,
			scoreMax:    0,
		},
		{
			name:        "Open WiFi network",
			input:       "WIFI:T:nopass;S:FreeAirportWiFi;;",
			wantVerdict: models.VerdictSafe,
			scoreMin:    15,
			scoreMax:    15,
			wantFlag:    "no password",
		},
		{
			name:        "WEP plus hidden network",
			input:       "WIFI:T:WEP;S:HomeNet;P:secret;H:true;;",
			wantVerdict: models.VerdictSafe,
			scoreMin:    25,
			scoreMax:    25,
			wantFlag:    "WEP",
		},
		{
			name:        "Open network with random SSID",
			input:       "WIFI:T:nopass;S:x9F2kQ7bZ1mW4vT8pL3d;;",
			wantVerdict: models.VerdictSafe,
			scoreMin:    25,
			scoreMax:    25,
			wantFlag:    "randomly generated",
		},
		{
			name:        "SMS to premium short code",
			input:       "SMSTO:12345:Hello there",
			wantVerdict: models.VerdictSafe,
			scoreMin:    25,
			scoreMax:    25,
			wantFlag:    "short code",
		},
		{
			name:        "SMS to a full-length number",
			input:       "SMSTO:+15551234567:running late",
			wantVerdict: models.VerdictSafe,
			scoreMin:    0,
			scoreMax:    0,
		},
		{
			name:        "Premium-rate phone number",
			input:       "TEL:19005551234",
			wantVerdict: models.VerdictSafe,
			scoreMin:    25,
			scoreMax:    25,
			wantFlag:    "premium-rate",
		},
		{
			name:        "Ordinary phone number",
			input:       "TEL:+15551234567",
			wantVerdict: models.VerdictSafe,
			scoreMin:    0,
			scoreMax:    0,
		},
		{
			name:        "Crypto payment request",
			input:       "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
			wantVerdict: models.VerdictSuspicious,
			scoreMin:    30,
			scoreMax:    30,
			wantFlag:    "payment request",
		},
		{
			name:        "Crypto payment with preset amount",
			input:       "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=0.5",
			wantVerdict: models.VerdictSuspicious,
			scoreMin:    40,
			scoreMax:    40,
			wantFlag:    "pre-fills an amount",
		},
		{
			name:        "Anonymous vCard without a name",
			input:       "BEGIN:VCARD\nVERSION:3.0\nTEL:+15551234567\nEND:VCARD",
			wantVerdict: models.VerdictSafe,
			scoreMin:    5,
			scoreMax:    5,
			wantFlag:    "no display name",
		},
		{
			name:        "Plain text poster",
			input:       "visit our booth at hall 4",
			wantVerdict: models.VerdictSafe,
			scoreMin:    0,
			scoreMax:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Analyze(tt.input)

			if got.Verdict != tt.wantVerdict {
				t.Errorf("Verdict = %q (score %d, flags %v), want %q",
					got.Verdict, got.Score, got.Flags, tt.wantVerdict)
			}
			if got.Score < tt.scoreMin || got.Score > tt.scoreMax {
				t.Errorf("Score = %d, want in [%d, %d]", got.Score, tt.scoreMin, tt.scoreMax)
			}
			if tt.wantFlag != "" {
				found := false
				for _, f := range got.Flags {
					if strings.Contains(f, tt.wantFlag) {
						found = true
					}
				}
				if !found {
					t.Errorf("Flags = %v, want one containing %q", got.Flags, tt.wantFlag)
				}
			}
		})
	}
}

func TestAnalyzeEmbeddedURLBleed(t *testing.T) {
	p, _ := newTestPayloadAnalyzer(t)

	// A denylisted link scores 100 on its own; smuggled inside a text payload
	// it may contribute at most 40 points.
	got := p.Analyze("Your parcel is held, reschedule at http://fedex-redelivery.tk/claim today")
	if got.Score != 40 {
		t.Errorf("Score = %d, want 40 (capped bleed)", got.Score)
	}
	if got.Verdict != models.VerdictSuspicious {
		t.Errorf("Verdict = %q, want suspicious", got.Verdict)
	}

	foundBleedFlag := false
	for _, f := range got.Flags {
		if strings.Contains(f, "embeds a link rated malicious") {
			foundBleedFlag = true
		}
	}
	if !foundBleedFlag {
		t.Errorf("Flags = %v, want embedded-link flag", got.Flags)
	}
}

func TestAnalyzeVCardWithPhishingLink(t *testing.T) {
	p, _ := newTestPayloadAnalyzer(t)

	card := "BEGIN:VCARD\nVERSION:3.0\nFN:Account Services\nURL:http://paypa1-verify-account.tk/signin\nEND:VCARD"
	got := p.Analyze(card)

	// vCard URL finding plus the bleed from a malicious embedded link.
	if got.Verdict != models.VerdictSuspicious {
		t.Errorf("Verdict = %q (score %d, flags %v), want suspicious", got.Verdict, got.Score, got.Flags)
	}
	if got.Score < 40 || got.Score > 55 {
		t.Errorf("Score = %d, want in [40, 55]", got.Score)
	}
}

func TestAnalyzeBlockedSchemePayloads(t *testing.T) {
	p, _ := newTestPayloadAnalyzer(t)

	// These classify as text by shape but carry executable-content schemes;
	// they must come back malicious, never safe.
	for _, raw := range []string{
		"javascript:alert(1)",
		"data:text/html;base64,PHNjcmlwdD4=",
		"vbscript:msgbox(1)",
		"JAVASCRIPT:alert(document.cookie)",
	} {
		got := p.Analyze(raw)
		if got.Verdict != models.VerdictMalicious {
			t.Errorf("Analyze(%q).Verdict = %q, want malicious", raw, got.Verdict)
		}
		if got.Score != 100 {
			t.Errorf("Analyze(%q).Score = %d, want 100", raw, got.Score)
		}
	}
}

func TestAnalyzeDelegatesURLPayloads(t *testing.T) {
	p, urls := newTestPayloadAnalyzer(t)

	for _, raw := range []string{
		"https://www.google.com",
		"http://paypa1-verify-account.tk/signin",
		"example.com/pay",
	} {
		direct := urls.Analyze(raw)
		viaPayload := p.Analyze(raw)
		if !reflect.DeepEqual(direct, viaPayload) {
			t.Errorf("Analyze(%q) diverged from the URL pipeline:\nurl:     %+v\npayload: %+v",
				raw, direct, viaPayload)
		}
	}
}

func TestParseWiFiEscapes(t *testing.T) {
	fields := parseWiFi(`WIFI:T:WPA;S:cafe\;upstairs;P:pass\;word;;`)

	if got := fields["S"]; got != "cafe;upstairs" {
		t.Errorf("S = %q, want %q", got, "cafe;upstairs")
	}
	if got := fields["P"]; got != "pass;word" {
		t.Errorf("P = %q, want %q", got, "pass;word")
	}
	if got := fields["T"]; got != "WPA" {
		t.Errorf("T = %q, want %q", got, "WPA")
	}
}
