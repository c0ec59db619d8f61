// Package anchorleak turns anchor leak info (an ECN, an anchor identifier
// and the source URL of a leaked anchor) into the queries that look the
// anchor up in Sherlog and in the Raffia Spanner tables.
//
// The transform is pure: Validate normalizes the raw arguments,
// RowDirectoryNum derives the Raffia split for the outlinksInfo row, and
// BuildReport assembles the three query strings. Extract runs all three.
package anchorleak

import (
	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
)

// Corpus names a Raffia recipe namespace.
type Corpus string

const (
	// CorpusWebsearch is the desktop corpus.
	CorpusWebsearch Corpus = "websearch"
	// CorpusRamsey is the mobile corpus.
	CorpusRamsey Corpus = "ramsey"
)

// DefaultSelector is the selector used when the caller gives none.
const DefaultSelector = "ramsey"

// AcceptedSelectors lists the corpus selectors in the order error messages show them.
var AcceptedSelectors = []string{"ramsey", "mobile", "web", "desktop"}

var selectors = map[string]Corpus{
	"desktop": CorpusWebsearch,
	"web":     CorpusWebsearch,
	"mobile":  CorpusRamsey,
	"ramsey":  CorpusRamsey,
}

// ParseCorpus maps a selector to its corpus. Matching is exact: "Web" is
// not "web".
func ParseCorpus(selector string) (Corpus, error) {
	c, ok := selectors[selector]
	if !ok {
		accepted := make([]string, len(AcceptedSelectors))
		copy(accepted, AcceptedSelectors)
		return "", apperrors.NewUnknownCorpus(selector, accepted)
	}
	return c, nil
}

// Shards returns the number of Raffia splits of the corpus, or 0 for an
// unknown corpus.
func (c Corpus) Shards() int {
	switch c {
	case CorpusWebsearch:
		return 256
	case CorpusRamsey:
		return 128
	default:
		return 0
	}
}

func (c Corpus) String() string {
	return string(c)
}
