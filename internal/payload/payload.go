package payload

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"qrguard/internal/analyzer"
	"qrguard/internal/models"
	"qrguard/internal/urlparse"
)

// Kind is the recognized shape of a QR payload.
type Kind string

const (
	KindURL    Kind = "url"
	KindWiFi   Kind = "wifi"
	KindVCard  Kind = "vcard"
	KindSMS    Kind = "sms"
	KindTel    Kind = "tel"
	KindEmail  Kind = "email"
	KindCrypto Kind = "crypto"
	KindText   Kind = "text"
)

// Verdict thresholds for non-URL payloads, on the same 0-100 scale as the
// URL pipeline.
const (
	safeThreshold       = 30
	suspiciousThreshold = 60
)

// Weighted findings for non-URL payload signals.
const (
	weightOpenWiFi       = 15.0
	weightWEPWiFi        = 20.0
	weightHiddenWiFi     = 5.0
	weightRandomSSID     = 10.0
	weightShortCodeSMS   = 25.0
	weightSMSBodyURL     = 15.0
	weightPremiumTel     = 25.0
	weightCryptoPayment  = 30.0
	weightCryptoAmount   = 10.0
	weightVCardURL       = 10.0
	weightVCardNoName    = 5.0
	weightEmbeddedURLMax = 40.0
)

var cryptoSchemes = []string{"bitcoin:", "ethereum:", "litecoin:", "monero:", "bitcoincash:"}

var premiumTelPrefixes = []string{"1900", "900", "0900", "+1900"}

var nestedURLPattern = regexp.MustCompile(`https?://[^\s;,"']+`)

// Classify determines the payload kind from its leading signature.
func Classify(raw string) Kind {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.HasPrefix(upper, "WIFI:"):
		return KindWiFi
	case strings.HasPrefix(upper, "BEGIN:VCARD"):
		return KindVCard
	case strings.HasPrefix(upper, "SMSTO:") || strings.HasPrefix(upper, "SMS:"):
		return KindSMS
	case strings.HasPrefix(upper, "TEL:"):
		return KindTel
	case strings.HasPrefix(upper, "MAILTO:") || strings.HasPrefix(upper, "MATMSG:"):
		return KindEmail
	case hasCryptoScheme(strings.ToLower(trimmed)):
		return KindCrypto
	case strings.HasPrefix(upper, "HTTP://") || strings.HasPrefix(upper, "HTTPS://") ||
		looksLikeBareHost(trimmed):
		return KindURL
	default:
		return KindText
	}
}

// Analyzer scores non-URL QR payloads with the same weighted-finding and
// clamp-and-band pattern as the URL pipeline, delegating URL payloads (and
// URLs embedded inside other payloads) to it.
type Analyzer struct {
	urls *analyzer.Analyzer
}

// New wraps the URL pipeline for payload analysis.
func New(urls *analyzer.Analyzer) *Analyzer {
	return &Analyzer{urls: urls}
}

// Analyze classifies and scores one payload.
func (p *Analyzer) Analyze(raw string) models.RiskAssessment {
	kind := Classify(raw)

	// Executable-content schemes classify as text by shape but must reach the
	// URL pipeline, which short-circuits them to a malicious verdict.
	if kind == KindURL || urlparse.HasBlockedScheme(raw) {
		return p.urls.Analyze(raw)
	}

	score := 0.0
	var flags []string
	breakdown := make(map[string]float64)

	add := func(key string, weight float64, flag string) {
		score += weight
		breakdown[key] = weight
		flags = append(flags, flag)
	}

	switch kind {
	case KindWiFi:
		p.scoreWiFi(raw, add)
	case KindSMS:
		p.scoreSMS(raw, add)
	case KindTel:
		p.scoreTel(raw, add)
	case KindCrypto:
		p.scoreCrypto(raw, add)
	case KindVCard:
		p.scoreVCard(raw, add)
	case KindEmail, KindText:
		// Nothing inherently risky; embedded URLs below carry the signal.
	}

	// Any payload kind can smuggle a URL; the worst embedded URL's verdict
	// bleeds into this score, capped so the host payload keeps its own band.
	if embedded := nestedURLPattern.FindString(raw); embedded != "" && kind != KindEmail {
		nested := p.urls.Analyze(embedded)
		bleed := float64(nested.Score) * weightEmbeddedURLMax / 100
		if bleed > 0 {
			add("embedded_url", math.Round(bleed*100)/100,
				"Payload embeds a link rated "+string(nested.Verdict))
		}
	}

	final := int(math.Round(score))
	if final > 100 {
		final = 100
	}

	verdict := models.VerdictSafe
	switch {
	case final >= suspiciousThreshold:
		verdict = models.VerdictMalicious
	case final >= safeThreshold:
		verdict = models.VerdictSuspicious
	}

	return models.RiskAssessment{
		Input:          raw,
		Score:          final,
		Verdict:        verdict,
		Flags:          flags,
		Details:        models.URLAnalysisResult{OriginalURL: raw},
		ScoreBreakdown: breakdown,
		Confidence:     0.6,
		Intel:          models.IntelResult{Confidence: models.IntelClean},
	}
}

func (p *Analyzer) scoreWiFi(raw string, add func(string, float64, string)) {
	fields := parseWiFi(raw)

	switch strings.ToUpper(fields["T"]) {
	case "", "NOPASS":
		add("wifi_open_network", weightOpenWiFi, "WiFi network has no password")
	case "WEP":
		add("wifi_wep_encryption", weightWEPWiFi, "WiFi network uses broken WEP encryption")
	}
	if strings.EqualFold(fields["H"], "true") {
		add("wifi_hidden_network", weightHiddenWiFi, "WiFi network is hidden")
	}
	if ssid := fields["S"]; len(ssid) >= 8 && urlparse.ShannonEntropy(ssid) > 4.0 {
		add("wifi_random_ssid", weightRandomSSID, "WiFi SSID looks randomly generated")
	}
}

func (p *Analyzer) scoreSMS(raw string, add func(string, float64, string)) {
	body := raw
	if idx := strings.Index(raw, ":"); idx >= 0 {
		body = raw[idx+1:]
	}
	number := body
	if idx := strings.Index(body, ":"); idx >= 0 {
		number = body[:idx]
	}
	number = strings.TrimSpace(number)

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) > 0 && len(digits) <= 6 {
		add("sms_short_code", weightShortCodeSMS, "SMS targets a premium short code")
	}
	if nestedURLPattern.MatchString(raw) {
		add("sms_body_url", weightSMSBodyURL, "Prefilled SMS body contains a link")
	}
}

func (p *Analyzer) scoreTel(raw string, add func(string, float64, string)) {
	number := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(raw), "tel:"))
	for _, prefix := range premiumTelPrefixes {
		if strings.HasPrefix(number, prefix) {
			add("tel_premium_rate", weightPremiumTel, "Phone number uses a premium-rate prefix")
			return
		}
	}
}

func (p *Analyzer) scoreCrypto(raw string, add func(string, float64, string)) {
	add("crypto_payment_request", weightCryptoPayment,
		"Payload is a cryptocurrency payment request")

	if u, err := url.Parse(strings.TrimSpace(raw)); err == nil {
		if u.Query().Get("amount") != "" {
			add("crypto_preset_amount", weightCryptoAmount,
				"Payment request pre-fills an amount")
		}
	}
}

func (p *Analyzer) scoreVCard(raw string, add func(string, float64, string)) {
	upper := strings.ToUpper(raw)
	if strings.Contains(upper, "URL:") || strings.Contains(upper, "URL;") {
		add("vcard_embedded_url", weightVCardURL, "Contact card embeds a website link")
	}
	if !strings.Contains(upper, "\nFN") && !strings.Contains(upper, ";FN") &&
		!strings.Contains(upper, "FN:") {
		add("vcard_missing_name", weightVCardNoName, "Contact card has no display name")
	}
}

// parseWiFi splits a WIFI:T:WPA;S:ssid;P:pass;; payload into its fields.
// Escaped separators (\;) inside values are honored.
func parseWiFi(raw string) map[string]string {
	fields := make(map[string]string)
	body := strings.TrimPrefix(strings.TrimSpace(raw), "WIFI:")
	body = strings.TrimPrefix(body, "wifi:")

	var parts []string
	var current strings.Builder
	escaped := false
	for _, r := range body {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	for _, part := range parts {
		if idx := strings.Index(part, ":"); idx > 0 {
			fields[strings.ToUpper(part[:idx])] = part[idx+1:]
		}
	}
	return fields
}

func hasCryptoScheme(lower string) bool {
	for _, s := range cryptoSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// looksLikeBareHost accepts scheme-less payloads that still read as web
// addresses ("example.com/pay"), which QR codes carry constantly.
func looksLikeBareHost(s string) bool {
	if strings.ContainsAny(s, " \t\n") || !strings.Contains(s, ".") {
		return false
	}
	host := s
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	if host == "" || strings.Contains(host, ":") {
		return false
	}
	for _, r := range host {
		if r != '.' && r != '-' && !(r >= 'a' && r <= 'z') &&
			!(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
