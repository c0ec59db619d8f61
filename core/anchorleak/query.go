package anchorleak

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/anchorleak/core/encoding"
)

const (
	sherlogURL = "https://sherlog-raffia.corp.google.com/dataid?systems=raffia&config=Raffia-Prod&dataid="

	anchorDataTemplate = `$ span sql /span/global/raffia-spanner:websearch-anchors.recipe ` +
		`"select * from RaffiaRecords where prefix=b'anchorData' and row_key=b'%s' and secondary_key=b'%s'"; `

	outlinksInfoTemplate = `$ span sql /span/global/raffia-spanner:%s.recipe ` +
		`"select * from RaffiaRecords where prefix=b'outlinksInfo' and row_key=b'%s' ` +
		`and secondary_key=b'outlink:%s' and split=%d;"`

	reportHeader = "----------------------"
)

// Report holds the lookups for one leaked anchor.
type Report struct {
	SherlogQuery      string `json:"sherlog_query"`
	AnchorDataQuery   string `json:"anchor_data_query"`
	OutlinksInfoQuery string `json:"outlinks_info_query"`

	Corpus       Corpus `json:"corpus"`
	Split        int    `json:"split"`
	SecondaryKey string `json:"secondary_key"` // hex, without the "outlink:" prefix
}

// SecondaryKey returns the hex outlinksInfo secondary key of an ECN and a
// resolved anchor identifier.
func SecondaryKey(ecn, anchorIDUnescaped string) string {
	return encoding.ToHex(encoding.StrToByteArray(ecn + ":" + anchorIDUnescaped))
}

// BuildReport assembles the queries for n. Values are inserted verbatim:
// the source URL is not percent-encoded and the anchorData query carries
// the anchor identifier with its escapes intact.
func BuildReport(n *Normalized) *Report {
	split := RowDirectoryNum(OutlinksInfoPrefix, n.SourceURL, n.Shards)
	key := SecondaryKey(n.ECN, n.AnchorIDUnescaped)

	return &Report{
		SherlogQuery:      sherlogURL + n.SourceURL,
		AnchorDataQuery:   fmt.Sprintf(anchorDataTemplate, n.ECN, n.AnchorID),
		OutlinksInfoQuery: fmt.Sprintf(outlinksInfoTemplate, n.Corpus, n.SourceURL, key, split),
		Corpus:            n.Corpus,
		Split:             split,
		SecondaryKey:      key,
	}
}

// String renders the report as the labelled text block users paste from.
func (r *Report) String() string {
	var sb strings.Builder
	sb.WriteString(reportHeader)
	sb.WriteString("\nSherlog Query:\n")
	sb.WriteString(r.SherlogQuery)
	sb.WriteString("\n\nanchorData Spanner Query:\n")
	sb.WriteString(r.AnchorDataQuery)
	sb.WriteString("\n\noutlinksInfo Spanner Query:\n")
	sb.WriteString(r.OutlinksInfoQuery)
	return sb.String()
}
