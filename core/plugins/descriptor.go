// Package plugins describes operations and hosts them.
//
// Operations are values: each one carries a static OperationDescriptor and a
// Run method over positional string arguments. Hosts (the CLI, the IPC
// plugin mode and the HTTP API) build a Registry from the operations they
// serve; nothing is registered process-wide.
package plugins

// ArgDescriptor describes one positional argument of an operation.
type ArgDescriptor struct {
	// Key is the name used for the argument in IPC and HTTP requests.
	Key string `json:"key"`
	// Name is the label shown to users.
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default string `json:"default"`
}

// OperationDescriptor is the static metadata a host needs to present and
// invoke an operation.
type OperationDescriptor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Module      string          `json:"module,omitempty"`
	Description string          `json:"description"`
	InfoURL     string          `json:"info_url,omitempty"`
	InputType   string          `json:"input_type"`
	OutputType  string          `json:"output_type"`
	Args        []ArgDescriptor `json:"args"`
}

// Positional orders named arguments by the descriptor, filling in defaults
// for keys that are absent. Keys the descriptor does not declare are ignored.
func (d *OperationDescriptor) Positional(named map[string]string) []string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		if v, ok := named[a.Key]; ok {
			args[i] = v
		} else {
			args[i] = a.Default
		}
	}
	return args
}

// Operation is a single-shot transform a host can run.
type Operation interface {
	Descriptor() *OperationDescriptor
	// Run executes the operation with positional args in descriptor order.
	Run(args []string) (string, error)
}
