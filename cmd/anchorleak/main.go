// Command anchorleak converts anchor leak info into Sherlog and Raffia
// Spanner queries. It also serves the conversion as an IPC plugin and over
// HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/anchorleak/core/anchorleak"
	"github.com/FocuswithJustin/anchorleak/core/plugins"
	"github.com/FocuswithJustin/anchorleak/internal/api"
	"github.com/FocuswithJustin/anchorleak/internal/config"
	"github.com/FocuswithJustin/anchorleak/internal/metrics"
	"github.com/FocuswithJustin/anchorleak/plugins/ipc"
)

const version = "0.1.0"

// CLI defines the command-line interface for anchorleak.
type CLI struct {
	// Global flags
	Config    string `name:"config" help:"Config file (defaults to the ANCHORLEAK_CONFIG environment variable)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" help:"Log format: text, json"`

	Extract    ExtractCmd      `cmd:"" help:"Build the lookup queries for a leaked anchor"`
	Operations OperationsGroup `cmd:"" help:"Inspect available operations"`
	IPC        IPCCmd          `cmd:"" name:"ipc" help:"Answer one IPC request from stdin (plugin mode)"`
	Serve      ServeCmd        `cmd:"" help:"Start the HTTP and websocket API"`
	Version    VersionCmd      `cmd:"" help:"Print version information"`
}

// Env is what every command runs against.
type Env struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Config   *config.Config
	Registry *plugins.Registry
}

// OperationsGroup contains operation inspection commands.
type OperationsGroup struct {
	List     OperationsListCmd     `cmd:"" help:"List operations"`
	Describe OperationsDescribeCmd `cmd:"" help:"Describe one operation"`
}

// ExtractCmd runs the anchor leak extraction.
type ExtractCmd struct {
	ECN      string `name:"ecn" required:"" help:"24-character ECN"`
	AnchorID string `name:"anchor-id" required:"" help:"12-character anchor identifier; backslash escapes are resolved"`
	URL      string `name:"url" required:"" help:"Source URL of the anchor"`
	Corpus   string `name:"corpus" help:"ramsey (mobile) or web (desktop); default from config"`
	JSON     bool   `name:"json" help:"Print the report as JSON"`
	Digest   bool   `name:"digest" help:"Append the BLAKE3 digest of the report"`
}

// extractOutput is the --json form of a report.
type extractOutput struct {
	*anchorleak.Report
	Output string `json:"output"`
	Digest string `json:"digest"`
}

func (c *ExtractCmd) Run(env *Env) error {
	corpus := c.Corpus
	if corpus == "" {
		corpus = env.Config.Extract.DefaultCorpus
	}

	res, err := env.Registry.Run(anchorleak.OperationID, map[string]string{
		anchorleak.ArgECN:       c.ECN,
		anchorleak.ArgAnchorID:  c.AnchorID,
		anchorleak.ArgSourceURL: c.URL,
		anchorleak.ArgCorpus:    corpus,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		// Extract is pure, so this is the report that produced res.Output.
		report, err := anchorleak.Extract(anchorleak.Input{
			ECN:       c.ECN,
			AnchorID:  c.AnchorID,
			SourceURL: c.URL,
			Corpus:    corpus,
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(extractOutput{Report: report, Output: res.Output, Digest: res.Digest})
	}

	fmt.Fprintln(env.Stdout, res.Output)
	if c.Digest {
		fmt.Fprintf(env.Stdout, "\nblake3: %s\n", res.Digest)
	}
	return nil
}

// OperationsListCmd lists registered operations.
type OperationsListCmd struct {
	JSON bool `name:"json" help:"Print descriptors as JSON"`
}

func (c *OperationsListCmd) Run(env *Env) error {
	ops := env.Registry.List()
	if c.JSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ops)
	}

	for _, d := range ops {
		fmt.Fprintf(env.Stdout, "%s\t%s\n", d.ID, d.Name)
	}
	return nil
}

// OperationsDescribeCmd prints one operation descriptor.
type OperationsDescribeCmd struct {
	ID string `arg:"" help:"Operation ID"`
}

func (c *OperationsDescribeCmd) Run(env *Env) error {
	op, err := env.Registry.Get(c.ID)
	if err != nil {
		return err
	}
	d := op.Descriptor()

	fmt.Fprintf(env.Stdout, "%s (%s)\n", d.Name, d.ID)
	fmt.Fprintf(env.Stdout, "  %s\n", d.Description)
	fmt.Fprintf(env.Stdout, "  input: %s, output: %s\n", d.InputType, d.OutputType)
	fmt.Fprintln(env.Stdout, "Arguments:")
	for _, a := range d.Args {
		if a.Default != "" {
			fmt.Fprintf(env.Stdout, "  %-12s %s (default %q)\n", a.Key, a.Name, a.Default)
		} else {
			fmt.Fprintf(env.Stdout, "  %-12s %s\n", a.Key, a.Name)
		}
	}
	return nil
}

// IPCCmd reads one request from stdin and writes one response to stdout.
// Failures are reported in the response, so the exit status is zero
// whenever a response was written.
type IPCCmd struct{}

func (c *IPCCmd) Run(env *Env) error {
	req, err := ipc.ReadRequest(env.Stdin)
	if err != nil {
		return ipc.WriteResponse(env.Stdout, ipc.Error(err.Error()))
	}
	return ipc.WriteResponse(env.Stdout, env.Registry.Handle(req))
}

// ServeCmd starts the API server.
type ServeCmd struct {
	Port int `help:"HTTP server port (default from config)"`
}

func (c *ServeCmd) Run(env *Env) error {
	cfg := *env.Config
	if c.Port > 0 {
		cfg.Server.Port = c.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api.Version = version
	return api.NewServer(&cfg, env.Registry, metrics.New()).ListenAndServe(ctx)
}

type VersionCmd struct{}

func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintf(env.Stdout, "anchorleak version %s\n", version)
	return nil
}

// run parses args, loads configuration and executes the selected command.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("anchorleak"),
		kong.Description("Convert anchor leak info to Sherlog and Spanner queries"),
		kong.Writers(stdout, os.Stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ApplyLogging(); err != nil {
		return err
	}

	registry, err := plugins.NewRegistry(anchorleak.NewOperation())
	if err != nil {
		return err
	}

	return kctx.Run(&Env{
		Stdin:    stdin,
		Stdout:   stdout,
		Config:   cfg,
		Registry: registry,
	})
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		// Operation errors are user-facing messages; print them as they are.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
