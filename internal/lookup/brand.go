package lookup

import (
	"sort"
	"strings"

	"qrguard/internal/models"
)

// Similarity floor below which a candidate is not considered an
// impersonation. 0.75 lets a 6-char brand absorb one substitution after
// leetspeak folding without matching unrelated words.
const brandSimilarityThreshold = 0.75

// maxEditDistance bounds the Levenshtein search; anything further apart than
// this is not a typosquat, so the DP loop can bail out early.
const maxEditDistance = 2

// Leetspeak substitutions folded before comparison, so "paypa1" and
// "g00gle" collapse onto their targets.
var leetFold = strings.NewReplacer(
	"0", "o",
	"1", "l",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"@", "a",
	"$", "s",
)

// BrandIndex is the brand reference table bucketed by token length, so a
// lookup only probes tokens within edit-distance reach of the host label
// instead of scanning the whole table.
type BrandIndex struct {
	byLength map[int][]Brand
	byName   map[string]Brand
}

// NewBrandIndex builds an index over the given table. Tests pass a small
// table; production callers use DefaultBrandIndex.
func NewBrandIndex(table []Brand) *BrandIndex {
	idx := &BrandIndex{
		byLength: make(map[int][]Brand),
		byName:   make(map[string]Brand, len(table)),
	}
	for _, b := range table {
		name := strings.ToLower(b.Name)
		idx.byLength[len(name)] = append(idx.byLength[len(name)], b)
		idx.byName[name] = b
	}
	for _, bucket := range idx.byLength {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Name < bucket[j].Name })
	}
	return idx
}

// DefaultBrandIndex returns the index over the bundled reference table.
func DefaultBrandIndex() *BrandIndex {
	return defaultBrandIndex
}

var defaultBrandIndex = NewBrandIndex(brandTable)

// Match returns the single best impersonation candidate for host, or nil.
// Legitimate visits to a brand's own canonical domain never match. Ties are
// broken by shortest edit distance, then lexical brand order.
func (idx *BrandIndex) Match(host string) *models.BrandMatch {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "" {
		return nil
	}

	registrable := registrableDomain(host)

	var best *models.BrandMatch
	bestDist := maxEditDistance + 1

	// Highest similarity wins; ties break by shortest edit distance, then
	// lexical brand order, so results are deterministic.
	consider := func(b Brand, dist int, similarity float64, field string) {
		if registrable == b.Domain {
			return
		}
		if similarity < brandSimilarityThreshold {
			return
		}
		better := best == nil ||
			similarity > best.Similarity ||
			(similarity == best.Similarity && dist < bestDist) ||
			(similarity == best.Similarity && dist == bestDist && b.Name < best.Brand)
		if better {
			best = &models.BrandMatch{
				Brand:           b.Name,
				CanonicalDomain: b.Domain,
				Similarity:      similarity,
				MatchedField:    field,
			}
			bestDist = dist
		}
	}

	// Exact brand token smuggled into a subdomain label
	// ("paypal.com.evil.ga") is the strongest impersonation signal.
	for i, label := range strings.Split(host, ".") {
		folded := leetFold.Replace(label)
		if b, ok := idx.byName[folded]; ok && i < strings.Count(host, ".") {
			consider(b, 0, 1.0, "subdomain")
		}
	}

	// Fuzzy match the registrable label against length-adjacent buckets.
	// Hyphenated hosts ("paypa1-secure-login.tk") are matched token by
	// token, since squatters pad the brand with filler words.
	label := coreLabel(host)
	candidates := []string{label}
	if strings.Contains(label, "-") {
		candidates = append(candidates, strings.Split(label, "-")...)
	}

	for _, cand := range candidates {
		folded := leetFold.Replace(cand)
		if len(folded) < 4 {
			continue
		}
		for l := len(folded) - maxEditDistance; l <= len(folded)+maxEditDistance; l++ {
			for _, b := range idx.byLength[l] {
				dist, ok := boundedLevenshtein(folded, b.Name, maxEditDistance)
				if !ok {
					continue
				}
				longer := len(folded)
				if len(b.Name) > longer {
					longer = len(b.Name)
				}
				similarity := 1.0 - float64(dist)/float64(longer)
				consider(b, dist, similarity, "host")
			}
		}
	}

	return best
}

// coreLabel extracts the label a typosquat would target: the one directly
// left of the public suffix, approximated as the second-to-last label.
func coreLabel(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return labels[len(labels)-2]
}

// registrableDomain approximates the registrable domain as the last two
// labels. Good enough for comparing against canonical brand domains, which
// the table stores in the same shape.
func registrableDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	// Handle two-level public suffixes in the table (co.uk, live.com, us).
	tail3 := strings.Join(labels[len(labels)-3:], ".")
	for _, b := range brandTable {
		if b.Domain == tail3 {
			return tail3
		}
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// boundedLevenshtein computes edit distance between a and b, abandoning the
// computation once the distance provably exceeds limit.
func boundedLevenshtein(a, b string, limit int) (int, bool) {
	la, lb := len(a), len(b)
	if la-lb > limit || lb-la > limit {
		return 0, false
	}
	if la == 0 {
		return lb, lb <= limit
	}
	if lb == 0 {
		return la, la <= limit
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			d := del
			if ins < d {
				d = ins
			}
			if sub < d {
				d = sub
			}
			curr[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > limit {
			return 0, false
		}
		prev, curr = curr, prev
	}

	if prev[lb] > limit {
		return 0, false
	}
	return prev[lb], true
}
