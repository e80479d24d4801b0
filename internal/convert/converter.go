// Package convert turns a JSON-LD document into a framed, human-friendly
// JSON-LD document.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/geoknoesis/jsonld-frame/internal/ctxlog"
	"github.com/geoknoesis/jsonld-frame/rdf"
)

// Request names the files of one conversion.
type Request struct {
	InputPath  string
	FramePath  string
	OutputPath string
}

// Options tunes parsing and framing. The zero value frames with the
// processor defaults.
type Options struct {
	// BaseIRI resolves relative IRIs in the input document.
	BaseIRI string
	// DocumentLoader resolves remote contexts; nil uses the processor default.
	DocumentLoader rdf.DocumentLoader
	// NativeTypes serializes the merged graph with native JSON numbers and booleans.
	NativeTypes bool

	// Embed, Explicit and RequireAll set the frame flag defaults.
	Embed      string
	Explicit   bool
	RequireAll bool
	// OmitGraph writes a single framed node without the @graph wrapper.
	OmitGraph bool
}

// Converter frames JSON-LD files.
type Converter struct {
	proc rdf.JSONLDProcessor
	opts Options
}

// New returns a Converter using proc for all JSON-LD algorithms.
func New(proc rdf.JSONLDProcessor, opts Options) *Converter {
	return &Converter{proc: proc, opts: opts}
}

// Convert reads req.InputPath and req.FramePath, frames the input and writes
// the result to req.OutputPath. The output file is only opened once framing
// succeeded, so a failed conversion leaves an existing output untouched.
func (c *Converter) Convert(ctx context.Context, req Request) error {
	logger := ctxlog.FromContext(ctx)

	input, err := readJSONLD(req.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ldOpts := rdf.JSONLDOptions{
		BaseIRI:        c.opts.BaseIRI,
		ProcessingMode: rdf.ProcessingModeJSONLD11,
		UseNativeTypes: c.opts.NativeTypes,
		DocumentLoader: c.opts.DocumentLoader,
	}

	quads, err := c.proc.ToRDF(ctx, input, ldOpts)
	if err != nil {
		return fmt.Errorf("parse input %s: %w", req.InputPath, err)
	}

	// Every IRI is absolute once parsed. Framing relative to the base would
	// compact @id values against it without writing an @base.
	ldOpts.BaseIRI = ""

	merged, err := c.mergeGraphs(ctx, quads, ldOpts)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	frame, err := readJSONLD(req.FramePath)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	framed, err := c.proc.Frame(ctx, merged, frame, rdf.FrameOptions{
		JSONLDOptions: ldOpts,
		Embed:         c.opts.Embed,
		Explicit:      c.opts.Explicit,
		RequireAll:    c.opts.RequireAll,
		OmitDefault:   true,
		OmitGraph:     c.opts.OmitGraph,
	})
	if err != nil {
		return fmt.Errorf("frame: %w", err)
	}

	for _, keys := range nodeKeySets(framed) {
		logger.Debug("framed node", "keys", keys)
	}

	if err := writeJSONLD(req.OutputPath, framed); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Debug("conversion finished", "statements", len(quads), "output", req.OutputPath)
	return nil
}

// mergeGraphs collapses every named graph into the default graph and returns
// the result as plain JSON-LD.
//
// Compatibility shim: some framing implementations do not merge named
// graphs before framing and only see the default graph. Drop this step once
// the processor frames the merged dataset itself.
func (c *Converter) mergeGraphs(ctx context.Context, quads []rdf.Quad, opts rdf.JSONLDOptions) (interface{}, error) {
	graph := rdf.MergeQuads(quads)
	ctxlog.FromContext(ctx).Debug("merged statements into default graph",
		"parsed", len(quads), "merged", graph.Len())

	expanded, err := c.proc.FromRDF(ctx, graph.Quads(), opts)
	if err != nil {
		return nil, err
	}
	return rdf.RoundTripJSONLD(expanded)
}

func readJSONLD(path string) (interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rdf.DecodeJSONLD(f, path)
}

func writeJSONLD(path string, doc interface{}) (err error) {
	var buf bytes.Buffer
	if err := rdf.EncodeJSONLD(&buf, doc); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(buf.Bytes())
	return err
}

// nodeKeySets returns the sorted property names of each top-level framed node.
func nodeKeySets(framed map[string]interface{}) [][]string {
	var nodes []interface{}
	if graph, ok := framed["@graph"].([]interface{}); ok {
		nodes = graph
	} else {
		node := make(map[string]interface{}, len(framed))
		for k, v := range framed {
			if k != "@context" {
				node[k] = v
			}
		}
		if len(node) > 0 {
			nodes = []interface{}{node}
		}
	}

	sets := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		obj, ok := n.(map[string]interface{})
		if !ok {
			continue
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sets = append(sets, keys)
	}
	return sets
}
