// Package cli implements the jsonld-frame command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geoknoesis/jsonld-frame/internal/convert"
	"github.com/geoknoesis/jsonld-frame/internal/ctxlog"
	"github.com/geoknoesis/jsonld-frame/rdf"
)

// EnvPrefix prefixes the environment variables that override optional flags.
const EnvPrefix = "JSONLD_FRAME"

// Optional flag names, also used as viper keys.
const (
	flagBase        = "base"
	flagContext     = "context"
	flagEmbed       = "embed"
	flagExplicit    = "explicit"
	flagRequireAll  = "require-all"
	flagNativeTypes = "native-types"
	flagOmitGraph   = "omit-graph"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
)

type options struct {
	infile  string
	frame   string
	outfile string
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %s\n", err)
	fmt.Fprint(stderr, cmd.UsageString())
	slog.Error("could not parse command line options", "error", err)
	return ExitUsage
}

func newRootCmd(logW io.Writer) *cobra.Command {
	var opts options
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "jsonld-frame -i INFILE -f FRAME -o OUTFILE",
		Short: "Reshape a JSON-LD document with a JSON-LD 1.1 frame",
		Long: `jsonld-frame converts a JSON-LD document into a more human friendly
JSON-LD document using a JSON-LD 1.1 frame.

All statements of the input, including those in named graphs, are merged
into a single graph before framing. Properties missing from a node are not
filled in with frame @default values.

Optional flags can be set through ` + EnvPrefix + `_* environment variables,
e.g. ` + EnvPrefix + `_LOG_LEVEL=debug.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, opts, logW)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.infile, "infile", "i", "", "input file")
	flags.StringVarP(&opts.frame, "frame", "f", "", "jsonld frame")
	flags.StringVarP(&opts.outfile, "outfile", "o", "", "output file")
	for _, name := range []string{"infile", "frame", "outfile"} {
		_ = cmd.MarkFlagRequired(name)
	}

	flags.String(flagBase, "", "base IRI for relative IRIs in the input")
	flags.StringSlice(flagContext, nil, "load a remote context from a local file (IRI=path, repeatable)")
	flags.String(flagEmbed, "", "default @embed mode ("+strings.Join(rdf.EmbedModes, ", ")+")")
	flags.Bool(flagExplicit, false, "default @explicit flag for the frame")
	flags.Bool(flagRequireAll, false, "default @requireAll flag for the frame")
	flags.Bool(flagNativeTypes, false, "use native JSON numbers and booleans for typed literals")
	flags.Bool(flagOmitGraph, false, "write a single framed node without the @graph wrapper")
	flags.String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(flagLogFormat, "text", "log format (text, json)")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{
		flagBase, flagContext, flagEmbed, flagExplicit, flagRequireAll,
		flagNativeTypes, flagOmitGraph, flagLogLevel, flagLogFormat,
	} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	return cmd
}

// run validates the optional settings and performs one conversion. Invalid
// settings are returned as plain errors (usage); conversion failures as
// *ExitError.
func run(ctx context.Context, v *viper.Viper, opts options, logW io.Writer) error {
	embed := v.GetString(flagEmbed)
	if embed != "" && !slices.Contains(rdf.EmbedModes, embed) {
		return fmt.Errorf("invalid --%s %q: want one of %s", flagEmbed, embed, strings.Join(rdf.EmbedModes, ", "))
	}
	mapping, err := rdf.ParseContextMappings(v.GetStringSlice(flagContext))
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", flagContext, err)
	}

	logger := newLogger(v.GetString(flagLogLevel), v.GetString(flagLogFormat), logW)
	ctx = ctxlog.WithLogger(ctx, logger)

	convOpts := convert.Options{
		BaseIRI:     v.GetString(flagBase),
		NativeTypes: v.GetBool(flagNativeTypes),
		Embed:       embed,
		Explicit:    v.GetBool(flagExplicit),
		RequireAll:  v.GetBool(flagRequireAll),
		OmitGraph:   v.GetBool(flagOmitGraph),
	}
	if len(mapping) > 0 {
		convOpts.DocumentLoader = rdf.NewFileDocumentLoader(mapping)
		logger.Debug("context mappings configured", "count", len(mapping))
	}

	logger.Info("converting", "infile", opts.infile, "frame", opts.frame, "outfile", opts.outfile)
	conv := convert.New(rdf.NewJSONLDProcessor(), convOpts)
	if err := conv.Convert(ctx, convert.Request{
		InputPath:  opts.infile,
		FramePath:  opts.frame,
		OutputPath: opts.outfile,
	}); err != nil {
		logger.Error("error processing",
			"infile", opts.infile, "frame", opts.frame, "outfile", opts.outfile,
			"code", rdf.Code(err), "error", err)
		return &ExitError{Code: ExitProcessing, Err: err}
	}
	return nil
}
