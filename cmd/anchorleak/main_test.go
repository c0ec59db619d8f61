package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FocuswithJustin/anchorleak/core/anchorleak"
	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
	"github.com/FocuswithJustin/anchorleak/core/plugins"
	"github.com/FocuswithJustin/anchorleak/internal/config"
	"github.com/FocuswithJustin/anchorleak/internal/logging"
	"github.com/FocuswithJustin/anchorleak/plugins/ipc"
)

const (
	testECN      = "123456789012345678901234"
	testAnchorID = "abcdefghijkl"
	testURL      = "http://example.com"
)

// runCLI runs the command line with no config file and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	t.Cleanup(func() { logging.InitLogger(logging.LevelWarn, logging.FormatText, os.Stderr) })

	var out bytes.Buffer
	err := run(args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func extractArgs(corpus string, extra ...string) []string {
	args := []string{"extract", "--ecn", testECN, "--anchor-id", testAnchorID, "--url", testURL}
	if corpus != "" {
		args = append(args, "--corpus", corpus)
	}
	return append(args, extra...)
}

func TestExtract(t *testing.T) {
	out, err := runCLI(t, "", extractArgs("ramsey")...)
	require.NoError(t, err)

	report, err := anchorleak.Extract(anchorleak.Input{ECN: testECN, AnchorID: testAnchorID, SourceURL: testURL, Corpus: "ramsey"})
	require.NoError(t, err)
	assert.Equal(t, report.String()+"\n", out)
}

func TestExtractDefaultCorpusFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchorleak.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extract:\n  default_corpus: desktop\n"), 0o600))

	out, err := runCLI(t, "", append([]string{"--config", path}, extractArgs("")...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "raffia-spanner:websearch.recipe")
	assert.Contains(t, out, "split=183;")

	// Without a config the corpus defaults to ramsey.
	out, err = runCLI(t, "", extractArgs("")...)
	require.NoError(t, err)
	assert.Contains(t, out, "split=55;")
}

func TestExtractDigest(t *testing.T) {
	out, err := runCLI(t, "", extractArgs("ramsey", "--digest")...)
	require.NoError(t, err)

	parts := strings.SplitN(out, "\n\nblake3: ", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, plugins.Digest(parts[0])+"\n", parts[1])
}

func TestExtractJSON(t *testing.T) {
	out, err := runCLI(t, "", extractArgs("web", "--json")...)
	require.NoError(t, err)

	var got struct {
		SherlogQuery      string `json:"sherlog_query"`
		AnchorDataQuery   string `json:"anchor_data_query"`
		OutlinksInfoQuery string `json:"outlinks_info_query"`
		Corpus            string `json:"corpus"`
		Split             int    `json:"split"`
		SecondaryKey      string `json:"secondary_key"`
		Output            string `json:"output"`
		Digest            string `json:"digest"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "websearch", got.Corpus)
	assert.Equal(t, 183, got.Split)
	assert.Equal(t, "3132333435363738393031323334353637383930313233343a6162636465666768696a6b6c", got.SecondaryKey)
	assert.Equal(t, "https://sherlog-raffia.corp.google.com/dataid?systems=raffia&config=Raffia-Prod&dataid=http://example.com", got.SherlogQuery)
	assert.Contains(t, got.Output, got.OutlinksInfoQuery)
	assert.Equal(t, plugins.Digest(got.Output), got.Digest)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown corpus",
			args:    extractArgs("unknown"),
			wantErr: apperrors.ErrUnknownCorpus,
			wantMsg: "Corpus=unknown, but it must be one of {ramsey, mobile, web, desktop}",
		},
		{
			name:    "short ecn",
			args:    []string{"extract", "--ecn", "123", "--anchor-id", testAnchorID, "--url", testURL},
			wantErr: apperrors.ErrECNLength,
			wantMsg: "length(ECN)=3, but it must be 24",
		},
		{
			name:    "escaped anchor too short",
			args:    []string{"extract", "--ecn", testECN, "--anchor-id", `\x00\x01\x02\x03\x04\x05`, "--url", testURL},
			wantErr: apperrors.ErrAnchorIdentifierLength,
			wantMsg: "length(Anchor Identifier)=6, but it must be 12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestExtractRequiresFlags(t *testing.T) {
	_, err := runCLI(t, "", "extract", "--ecn", testECN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing flags")
}

func TestOperationsList(t *testing.T) {
	out, err := runCLI(t, "", "operations", "list")
	require.NoError(t, err)
	assert.Equal(t, anchorleak.OperationID+"\tExtract Anchor Leak Info\n", out)

	out, err = runCLI(t, "", "operations", "list", "--json")
	require.NoError(t, err)
	var ops []plugins.OperationDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, "ramsey", ops[0].Args[3].Default)
}

func TestOperationsDescribe(t *testing.T) {
	out, err := runCLI(t, "", "operations", "describe", anchorleak.OperationID)
	require.NoError(t, err)
	assert.Contains(t, out, "Extract Anchor Leak Info ("+anchorleak.OperationID+")")
	assert.Contains(t, out, `Corpus: ramsey (mobile) / web (desktop) (default "ramsey")`)

	_, err = runCLI(t, "", "operations", "describe", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIPC(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		wantStatus string
		wantErr    string
		wantOutput string
	}{
		{
			name: "run",
			stdin: `{"command":"run","args":{"operation":"extract-anchor-leak-info","ecn":"` + testECN +
				`","anchor_id":"` + testAnchorID + `","source_url":"` + testURL + `"}}`,
			wantStatus: ipc.StatusOK,
			wantOutput: "split=55;",
		},
		{
			name:       "validation error",
			stdin:      `{"command":"run","args":{"operation":"extract-anchor-leak-info","ecn":"x","anchor_id":"` + testAnchorID + `"}}`,
			wantStatus: ipc.StatusError,
			wantErr:    "length(ECN)=1, but it must be 24",
		},
		{
			name:       "bad request",
			stdin:      `{}`,
			wantStatus: ipc.StatusError,
			wantErr:    "request has no command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.stdin, "ipc")
			require.NoError(t, err)

			var resp struct {
				Status string         `json:"status"`
				Result *ipc.RunResult `json:"result"`
				Error  string         `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantErr, resp.Error)
			if tt.wantOutput != "" {
				require.NotNil(t, resp.Result)
				assert.Contains(t, resp.Result.Output, tt.wantOutput)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "anchorleak version "+version+"\n", out)
}

func TestGlobalFlagValidation(t *testing.T) {
	_, err := runCLI(t, "", "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}
