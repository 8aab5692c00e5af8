// Package dedup removes duplicate content within a single ingestion batch.
package dedup

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/chatvat/chatvat/internal/domain"
)

// FingerprintOf computes the stable content fingerprint of a unit's text.
// The same fingerprint keys both intra-batch dedup and the store's upsert,
// so re-ingesting identical content overwrites instead of duplicating.
func FingerprintOf(text string) domain.Fingerprint {
	return domain.Fingerprint(fmt.Sprintf("%016x", xxhash.Sum64String(text)))
}

// Deduplicate keeps the first occurrence of each fingerprint and drops
// the rest, preserving input order. Pure: it never consults the store,
// so cross-run duplicates are left to the store's upsert-by-fingerprint
// semantics.
func Deduplicate(units []domain.RawUnit) (out []domain.RawUnit, dropped int) {
	if len(units) == 0 {
		return nil, 0
	}

	seen := make(map[domain.Fingerprint]struct{}, len(units))
	out = make([]domain.RawUnit, 0, len(units))
	for _, u := range units {
		fp := FingerprintOf(u.Text)
		if _, ok := seen[fp]; ok {
			dropped++
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, u)
	}
	return out, dropped
}
