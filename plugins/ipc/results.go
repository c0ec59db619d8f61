package ipc

// RunResult is the result of a run command.
type RunResult struct {
	Operation string `json:"operation"`
	Output    string `json:"output"`
	Digest    string `json:"digest"` // BLAKE3-256 of Output, hex
}
