package domain

// RawUnit is one piece of extracted text plus provenance.
// Never mutated after creation.
type RawUnit struct {
	Text         string
	SourceTarget string
	SourceKind   SourceKind
}

// Fingerprint is the deterministic content hash used as both the
// deduplication key and the storage identity of a unit.
type Fingerprint string

// Hit is one query result from the knowledge store.
type Hit struct {
	Text         string
	SourceTarget string
	SourceKind   SourceKind
	Score        float64
}
