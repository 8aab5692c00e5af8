package domain

import "fmt"

// SourceKind selects the fetch strategy for a configured source.
type SourceKind string

const (
	KindCrawledPage SourceKind = "crawled_page"
	KindJSONAPI     SourceKind = "json_api"
	KindLocalFile   SourceKind = "local_file"
)

// Valid reports whether the kind is one of the known strategies.
func (k SourceKind) Valid() bool {
	switch k {
	case KindCrawledPage, KindJSONAPI, KindLocalFile:
		return true
	}
	return false
}

// Source is one configured origin of ingestible content.
// Immutable after configuration load.
type Source struct {
	Kind    SourceKind        `yaml:"kind"`
	Target  string            `yaml:"target"`
	Headers map[string]string `yaml:"headers"`
}

func (s Source) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Target)
}
