package lookup

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Invisible or zero-width code points that have no business in a hostname.
// Written as escapes; most of these render as nothing at all.
var invisibleRunes = map[rune]string{
	'\u200B': "zero-width space",
	'\u200C': "zero-width non-joiner",
	'\u200D': "zero-width joiner",
	'\u2060': "word joiner",
	'\uFEFF': "zero-width no-break space",
	'\u00AD': "soft hyphen",
}

// Scripts whose letter shapes overlap with Latin closely enough to spoof it.
// A host mixing Latin with one of these is the homograph pattern; a host
// written purely in Cyrillic or Greek is just an international domain.
var spoofableScripts = []*unicode.RangeTable{
	unicode.Cyrillic,
	unicode.Greek,
	unicode.Armenian,
	unicode.Cherokee,
}

var spoofableNames = []string{"Cyrillic", "Greek", "Armenian", "Cherokee"}

// DetectHomograph inspects a Unicode host for mixed-script spoofing and
// invisible characters. It returns whether the host triggers and the list of
// human-readable reasons. Single-script IDN hosts do not trigger.
func DetectHomograph(host string) (bool, []string) {
	if host == "" {
		return false, nil
	}

	var reasons []string

	hasLatin := false
	mixedWith := ""
	for _, r := range host {
		if desc, bad := invisibleRunes[r]; bad {
			reasons = append(reasons, "Host contains invisible character: "+desc)
			continue
		}
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.Is(unicode.Latin, r) {
			hasLatin = true
			continue
		}
		for i, script := range spoofableScripts {
			if unicode.Is(script, r) {
				mixedWith = spoofableNames[i]
				break
			}
		}
	}

	if hasLatin && mixedWith != "" {
		reasons = append(reasons, "Host mixes Latin with "+mixedWith+" look-alike characters")
	}

	// Compatibility characters (fullwidth letters, ligatures) normalize to
	// different text under NFKC; legitimate hostnames are already in NFKC form.
	if !norm.NFKC.IsNormalString(host) {
		reasons = append(reasons, "Host contains non-canonical Unicode forms")
	}

	return len(reasons) > 0, reasons
}
