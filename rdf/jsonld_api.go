package rdf

import (
	"context"
	"fmt"
	"slices"
	"sort"

	ld "github.com/piprate/json-gold/ld"
)

// ProcessingModeJSONLD11 selects JSON-LD 1.1 semantics.
const ProcessingModeJSONLD11 = "json-ld-1.1"

const defaultGraphName = "@default"

// EmbedModes lists the @embed values the framing processor implements.
var EmbedModes = []string{ld.EmbedAlways, ld.EmbedLast, ld.EmbedNever}

// JSONLDOptions configures JSON-LD processing.
type JSONLDOptions struct {
	// BaseIRI resolves relative IRIs.
	BaseIRI string
	// ProcessingMode controls JSON-LD version semantics: "json-ld-1.0" or "json-ld-1.1".
	ProcessingMode string

	// UseNativeTypes emits native JSON numbers and booleans in FromRDF.
	UseNativeTypes bool

	// Remote document loading.
	DocumentLoader DocumentLoader
}

// FrameOptions configures the JSON-LD Framing algorithm.
type FrameOptions struct {
	JSONLDOptions

	// Embed is the default @embed value, one of EmbedModes.
	// Empty keeps the processor default (@last).
	Embed string
	// Explicit is the default @explicit flag.
	Explicit bool
	// RequireAll is the default @requireAll flag. It is always applied, so
	// the zero value frames with false as JSON-LD 1.1 framing does.
	RequireAll bool
	// OmitDefault suppresses frame @default values for absent properties.
	OmitDefault bool
	// OmitGraph drops the top-level @graph when it holds a single node.
	OmitGraph bool
}

// DocumentLoader resolves remote contexts/documents.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, iri string) (RemoteDocument, error)
}

// RemoteDocument represents a fetched JSON-LD document.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// JSONLDProcessor exposes the JSON-LD algorithms used to frame a document.
type JSONLDProcessor interface {
	// ToRDF converts a JSON-LD document to RDF quads.
	ToRDF(ctx context.Context, input interface{}, opts JSONLDOptions) ([]Quad, error)
	// FromRDF converts RDF quads to an expanded JSON-LD document.
	FromRDF(ctx context.Context, quads []Quad, opts JSONLDOptions) (interface{}, error)
	// Frame reshapes a JSON-LD document into the tree described by frame.
	Frame(ctx context.Context, input interface{}, frame interface{}, opts FrameOptions) (map[string]interface{}, error)
}

type defaultJSONLDProcessor struct{}

// NewJSONLDProcessor returns the default JSON-LD processor, backed by json-gold.
func NewJSONLDProcessor() JSONLDProcessor {
	return &defaultJSONLDProcessor{}
}

func (p *defaultJSONLDProcessor) ToRDF(ctx context.Context, input interface{}, opts JSONLDOptions) ([]Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newJSONGoldOptions(ctx, opts)
	result, err := proc.ToRDF(input, goldOpts)
	if err != nil {
		return nil, &ParseError{Format: "jsonld", Offset: -1, Err: err}
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("%w: ToRDF returned %T", ErrUnexpectedResult, result)
	}
	return fromJSONGoldDataset(dataset)
}

func (p *defaultJSONLDProcessor) FromRDF(ctx context.Context, quads []Quad, opts JSONLDOptions) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dataset, err := toJSONGoldDataset(quads)
	if err != nil {
		return nil, err
	}
	serializer := &ld.NQuadRDFSerializer{}
	serialized, err := serializer.Serialize(dataset)
	if err != nil {
		return nil, err
	}
	nquads, ok := serialized.(string)
	if !ok {
		return nil, fmt.Errorf("%w: N-Quads serializer returned %T", ErrUnexpectedResult, serialized)
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newJSONGoldOptions(ctx, opts)
	goldOpts.Format = "application/n-quads"
	return proc.FromRDF(nquads, goldOpts)
}

func (p *defaultJSONLDProcessor) Frame(ctx context.Context, input interface{}, frame interface{}, opts FrameOptions) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newJSONGoldOptions(ctx, opts.JSONLDOptions)
	if opts.Embed != "" {
		if !slices.Contains(EmbedModes, opts.Embed) {
			return nil, &FramingError{Err: fmt.Errorf("unsupported @embed value %q", opts.Embed)}
		}
		goldOpts.Embed = ld.Embed(opts.Embed)
	}
	goldOpts.Explicit = opts.Explicit
	goldOpts.RequireAll = opts.RequireAll
	goldOpts.OmitDefault = opts.OmitDefault
	goldOpts.OmitGraph = opts.OmitGraph
	framed, err := proc.Frame(input, frame, goldOpts)
	if err != nil {
		return nil, &FramingError{Err: err}
	}
	return framed, nil
}

type jsonGoldDocumentLoader struct {
	ctx   context.Context
	inner DocumentLoader
}

func (l jsonGoldDocumentLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	remote, err := l.inner.LoadDocument(l.ctx, iri)
	if err != nil {
		return nil, err
	}
	return &ld.RemoteDocument{
		DocumentURL: remote.DocumentURL,
		Document:    remote.Document,
		ContextURL:  remote.ContextURL,
	}, nil
}

func newJSONGoldOptions(ctx context.Context, opts JSONLDOptions) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.BaseIRI)
	if opts.ProcessingMode != "" {
		goldOpts.ProcessingMode = opts.ProcessingMode
	}
	goldOpts.UseNativeTypes = opts.UseNativeTypes
	if opts.DocumentLoader != nil {
		goldOpts.DocumentLoader = jsonGoldDocumentLoader{ctx: ctx, inner: opts.DocumentLoader}
	}
	return goldOpts
}

// fromJSONGoldDataset flattens a json-gold dataset into quads. The default
// graph comes first, named graphs follow in lexical order of their names.
func fromJSONGoldDataset(dataset *ld.RDFDataset) ([]Quad, error) {
	names := make([]string, 0, len(dataset.Graphs))
	for name := range dataset.Graphs {
		if name != defaultGraphName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := dataset.Graphs[defaultGraphName]; ok {
		names = append([]string{defaultGraphName}, names...)
	}

	var quads []Quad
	for _, name := range names {
		for _, q := range dataset.Graphs[name] {
			if q == nil {
				continue
			}
			quad, err := fromJSONGoldQuad(q, name)
			if err != nil {
				return nil, err
			}
			quads = append(quads, quad)
		}
	}
	return quads, nil
}

func fromJSONGoldQuad(q *ld.Quad, graphName string) (Quad, error) {
	s, err := fromJSONGoldNode(q.Subject)
	if err != nil {
		return Quad{}, err
	}
	p, err := fromJSONGoldNode(q.Predicate)
	if err != nil {
		return Quad{}, err
	}
	pred, ok := p.(IRI)
	if !ok {
		return Quad{}, fmt.Errorf("%w: predicate %s is not an IRI", ErrInvalidDocument, p)
	}
	o, err := fromJSONGoldNode(q.Object)
	if err != nil {
		return Quad{}, err
	}
	quad := Quad{S: s, P: pred, O: o}
	if graphName != defaultGraphName {
		quad.G = graphNameTerm(graphName)
	}
	return quad, nil
}

func graphNameTerm(name string) Term {
	if len(name) > 2 && name[:2] == "_:" {
		return BlankNode{ID: name[2:]}
	}
	return IRI{Value: name}
}

func fromJSONGoldNode(node ld.Node) (Term, error) {
	switch n := node.(type) {
	case ld.IRI:
		return IRI{Value: n.Value}, nil
	case *ld.IRI:
		return IRI{Value: n.Value}, nil
	case ld.BlankNode:
		return blankNodeFromAttribute(n.Attribute), nil
	case *ld.BlankNode:
		return blankNodeFromAttribute(n.Attribute), nil
	case ld.Literal:
		return literalFromJSONGold(n), nil
	case *ld.Literal:
		return literalFromJSONGold(*n), nil
	case nil:
		return nil, fmt.Errorf("%w: missing term in quad", ErrInvalidDocument)
	default:
		return nil, fmt.Errorf("%w: node type %T", ErrUnexpectedResult, node)
	}
}

func blankNodeFromAttribute(attr string) BlankNode {
	if len(attr) > 2 && attr[:2] == "_:" {
		return BlankNode{ID: attr[2:]}
	}
	return BlankNode{ID: attr}
}

func literalFromJSONGold(lit ld.Literal) Literal {
	out := Literal{Lexical: lit.Value, Lang: lit.Language}
	if lit.Datatype != "" && lit.Datatype != rdfLangStr {
		out.Datatype = IRI{Value: lit.Datatype}
	}
	return out
}

func toJSONGoldDataset(quads []Quad) (*ld.RDFDataset, error) {
	dataset := ld.NewRDFDataset()
	for _, q := range quads {
		if q.S == nil || q.O == nil || q.P.Value == "" {
			return nil, fmt.Errorf("%w: incomplete statement", ErrInvalidDocument)
		}
		name := defaultGraphName
		var graph ld.Node
		if q.G != nil {
			graph = toJSONGoldNode(q.G)
			name = graph.GetValue()
		}
		dataset.Graphs[name] = append(dataset.Graphs[name], &ld.Quad{
			Subject:   toJSONGoldNode(q.S),
			Predicate: ld.NewIRI(q.P.Value),
			Object:    toJSONGoldNode(q.O),
			Graph:     graph,
		})
	}
	return dataset, nil
}

func toJSONGoldNode(term Term) ld.Node {
	switch t := term.(type) {
	case IRI:
		return ld.NewIRI(t.Value)
	case BlankNode:
		return ld.NewBlankNode("_:" + t.ID)
	case Literal:
		datatype := t.Datatype.Value
		switch {
		case t.Lang != "":
			datatype = rdfLangStr
		case datatype == "":
			datatype = xsdString
		}
		return ld.NewLiteral(t.Lexical, datatype, t.Lang)
	default:
		return ld.NewIRI(term.String())
	}
}
