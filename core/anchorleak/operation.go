package anchorleak

import (
	"fmt"

	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
	"github.com/FocuswithJustin/anchorleak/core/plugins"
)

// OperationID identifies the extraction in registries and requests.
const OperationID = "extract-anchor-leak-info"

// Argument keys used by IPC and HTTP requests.
const (
	ArgECN       = "ecn"
	ArgAnchorID  = "anchor_id"
	ArgSourceURL = "source_url"
	ArgCorpus    = "corpus"
)

var descriptor = plugins.OperationDescriptor{
	ID:          OperationID,
	Name:        "Extract Anchor Leak Info",
	Module:      "Default",
	Description: "Convert Anchor Leak Info (desktop_doc_info / mobile_doc_info / sherlog log) to spanner queries.",
	InputType:   "string",
	OutputType:  "string",
	Args: []plugins.ArgDescriptor{
		{Key: ArgECN, Name: "ECN", Type: "string"},
		{Key: ArgAnchorID, Name: "Anchor Identifier", Type: "string"},
		{Key: ArgSourceURL, Name: "Source URL", Type: "string"},
		{Key: ArgCorpus, Name: "Corpus: ramsey (mobile) / web (desktop)", Type: "string", Default: DefaultSelector},
	},
}

// Extract validates in and builds its report. Failures are returned as
// *errors.OperationError carrying the validation message unchanged.
func Extract(in Input) (*Report, error) {
	n, err := Validate(in)
	if err != nil {
		return nil, apperrors.NewOperation(OperationID, err)
	}
	return BuildReport(n), nil
}

// Operation exposes Extract to operation hosts.
type Operation struct{}

// NewOperation returns the extraction operation.
func NewOperation() *Operation {
	return &Operation{}
}

// Descriptor returns a copy of the static descriptor.
func (*Operation) Descriptor() *plugins.OperationDescriptor {
	d := descriptor
	d.Args = append([]plugins.ArgDescriptor(nil), descriptor.Args...)
	return &d
}

// Run takes the ECN, anchor identifier, source URL and corpus selector, in
// that order, and returns the rendered report.
func (*Operation) Run(args []string) (string, error) {
	if len(args) != len(descriptor.Args) {
		return "", apperrors.NewOperation(OperationID,
			fmt.Errorf("%w: expected %d arguments, got %d", apperrors.ErrInvalidInput, len(descriptor.Args), len(args)))
	}
	report, err := Extract(Input{
		ECN:       args[0],
		AnchorID:  args[1],
		SourceURL: args[2],
		Corpus:    args[3],
	})
	if err != nil {
		return "", err
	}
	return report.String(), nil
}
