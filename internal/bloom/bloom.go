package bloom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
)

// Filter is a classic Bloom filter sized from an expected item count and a
// target false-positive rate. Add is the only mutating operation; once
// construction is done the filter is safe for concurrent readers.
//
// The structural guarantee callers rely on: an added item is always reported
// by MightContain. False positives happen at roughly the target rate and the
// caller is expected to confirm them against an exact set.
type Filter struct {
	bits          []uint64
	numBits       uint64
	numHashes     int
	expectedItems int
	targetFPR     float64
	inserted      int
}

// Stats is an observability snapshot of the filter geometry.
type Stats struct {
	BitCount      uint64  `json:"bit_count"`
	HashFunctions int     `json:"hash_functions"`
	ExpectedItems int     `json:"expected_items"`
	InsertedCount int     `json:"inserted_count"`
	TargetFPR     float64 `json:"target_fpr"`
	EstimatedFPR  float64 `json:"estimated_fpr"`
}

const (
	serialMagic   = "QGBF"
	serialVersion = 1
)

// New sizes a filter for expectedItems at targetFPR using the standard
// geometry: m = -n·ln(p)/ln²2 bits and k = (m/n)·ln2 hash functions.
func New(expectedItems int, targetFPR float64) (*Filter, error) {
	if expectedItems <= 0 {
		return nil, errors.New("bloom: expected item count must be positive")
	}
	if targetFPR <= 0 || targetFPR >= 1 {
		return nil, fmt.Errorf("bloom: target false-positive rate %v outside (0,1)", targetFPR)
	}

	n := float64(expectedItems)
	m := math.Ceil(-n * math.Log(targetFPR) / (math.Ln2 * math.Ln2))
	k := int(math.Round(m / n * math.Ln2))
	if k < 1 {
		k = 1
	}

	numBits := uint64(m)
	if numBits < 64 {
		numBits = 64
	}

	return &Filter{
		bits:          make([]uint64, (numBits+63)/64),
		numBits:       numBits,
		numHashes:     k,
		expectedItems: expectedItems,
		targetFPR:     targetFPR,
	}, nil
}

// Add inserts item. Not safe to call concurrently with readers.
func (f *Filter) Add(item string) {
	h1, h2 := f.hashPair(item)
	for i := 0; i < f.numHashes; i++ {
		idx := (h1 + uint64(i)*h2) % f.numBits
		f.bits[idx/64] |= 1 << (idx % 64)
	}
	f.inserted++
}

// MightContain reports whether item may have been added. False means
// definitely absent; true means probably present.
func (f *Filter) MightContain(item string) bool {
	h1, h2 := f.hashPair(item)
	for i := 0; i < f.numHashes; i++ {
		idx := (h1 + uint64(i)*h2) % f.numBits
		if f.bits[idx/64]&(1<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

// Stats returns the filter geometry and the analytically estimated
// false-positive rate for the current fill level: (1 - e^(-kn/m))^k.
func (f *Filter) Stats() Stats {
	est := 0.0
	if f.inserted > 0 {
		exp := -float64(f.numHashes) * float64(f.inserted) / float64(f.numBits)
		est = math.Pow(1-math.Exp(exp), float64(f.numHashes))
	}
	return Stats{
		BitCount:      f.numBits,
		HashFunctions: f.numHashes,
		ExpectedItems: f.expectedItems,
		InsertedCount: f.inserted,
		TargetFPR:     f.targetFPR,
		EstimatedFPR:  est,
	}
}

// hashPair derives the two independent hash values used for double hashing.
// h2 is forced odd so the probe sequence cycles through the whole bit space.
func (f *Filter) hashPair(item string) (uint64, uint64) {
	hA := fnv.New64a()
	hA.Write([]byte(item))
	h1 := hA.Sum64()

	hB := fnv.New64()
	hB.Write([]byte(item))
	h2 := hB.Sum64() | 1

	return h1, h2
}

// MarshalBinary serializes the filter to a compact byte layout so pre-built
// denylist filters can ship as bundled blobs.
//
// Layout: magic(4) version(1) numBits(8) numHashes(4) expected(8)
// inserted(8) targetFPR(8, IEEE 754 bits) bitArray(8·len).
func (f *Filter) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 41+len(f.bits)*8)
	buf = append(buf, serialMagic...)
	buf = append(buf, serialVersion)
	buf = binary.BigEndian.AppendUint64(buf, f.numBits)
	buf = binary.BigEndian.AppendUint32(buf, uint32(f.numHashes))
	buf = binary.BigEndian.AppendUint64(buf, uint64(f.expectedItems))
	buf = binary.BigEndian.AppendUint64(buf, uint64(f.inserted))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(f.targetFPR))
	for _, word := range f.bits {
		buf = binary.BigEndian.AppendUint64(buf, word)
	}
	return buf, nil
}

// UnmarshalBinary restores a filter serialized by MarshalBinary.
func (f *Filter) UnmarshalBinary(data []byte) error {
	if len(data) < 41 {
		return errors.New("bloom: serialized filter truncated")
	}
	if string(data[:4]) != serialMagic {
		return errors.New("bloom: bad magic")
	}
	if data[4] != serialVersion {
		return fmt.Errorf("bloom: unsupported version %d", data[4])
	}

	numBits := binary.BigEndian.Uint64(data[5:13])
	numHashes := int(binary.BigEndian.Uint32(data[13:17]))
	expected := int(binary.BigEndian.Uint64(data[17:25]))
	inserted := int(binary.BigEndian.Uint64(data[25:33]))
	fpr := math.Float64frombits(binary.BigEndian.Uint64(data[33:41]))

	wordCount := int((numBits + 63) / 64)
	if len(data) != 41+wordCount*8 {
		return fmt.Errorf("bloom: payload length %d does not match bit count %d", len(data), numBits)
	}
	if numBits < 1 {
		return errors.New("bloom: bit count must be positive")
	}
	if numHashes < 1 {
		return errors.New("bloom: hash function count must be positive")
	}

	bits := make([]uint64, wordCount)
	for i := range bits {
		bits[i] = binary.BigEndian.Uint64(data[41+i*8:])
	}

	f.bits = bits
	f.numBits = numBits
	f.numHashes = numHashes
	f.expectedItems = expected
	f.inserted = inserted
	f.targetFPR = fpr
	return nil
}
