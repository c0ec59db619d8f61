package anchorleak

import (
	"github.com/FocuswithJustin/anchorleak/core/encoding"
	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
)

// Required field lengths, in characters.
const (
	ECNLength      = 24
	AnchorIDLength = 12
)

// Field names as they appear in error messages.
const (
	fieldECN      = "ECN"
	fieldAnchorID = "Anchor Identifier"
)

// Input holds the raw arguments of an extraction.
type Input struct {
	ECN       string `json:"ecn"`
	AnchorID  string `json:"anchor_id"` // may contain backslash escapes
	SourceURL string `json:"source_url"`
	Corpus    string `json:"corpus"` // selector: ramsey, mobile, web or desktop
}

// Normalized is an Input that passed validation.
type Normalized struct {
	ECN               string
	AnchorID          string // as given, escapes intact
	AnchorIDUnescaped string
	SourceURL         string
	Corpus            Corpus
	Shards            int
}

// Validate checks in and resolves the escapes in its anchor identifier.
//
// Checks run in a fixed order and the first failure is returned: the
// resolved anchor identifier length, then the ECN length, then the corpus
// selector. A malformed escape in the anchor identifier fails before any
// length is measured.
func Validate(in Input) (*Normalized, error) {
	unescaped, err := encoding.ParseEscapedChars(in.AnchorID)
	if err != nil {
		return nil, err
	}
	if n := encoding.CharLen(unescaped); n != AnchorIDLength {
		return nil, apperrors.NewLength(fieldAnchorID, n, AnchorIDLength, apperrors.ErrAnchorIdentifierLength)
	}

	if n := encoding.CharLen(in.ECN); n != ECNLength {
		return nil, apperrors.NewLength(fieldECN, n, ECNLength, apperrors.ErrECNLength)
	}

	corpus, err := ParseCorpus(in.Corpus)
	if err != nil {
		return nil, err
	}

	return &Normalized{
		ECN:               in.ECN,
		AnchorID:          in.AnchorID,
		AnchorIDUnescaped: unescaped,
		SourceURL:         in.SourceURL,
		Corpus:            corpus,
		Shards:            corpus.Shards(),
	}, nil
}
