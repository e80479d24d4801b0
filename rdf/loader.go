package rdf

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	ld "github.com/piprate/json-gold/ld"
)

// FileDocumentLoader serves remote contexts from local files.
// IRIs without a mapping are fetched by json-gold's default HTTP loader.
type FileDocumentLoader struct {
	mapping  map[string]string
	fallback ld.DocumentLoader

	mu    sync.Mutex
	cache map[string]RemoteDocument
}

// NewFileDocumentLoader returns a loader that resolves each IRI in mapping to
// the file path it maps to.
func NewFileDocumentLoader(mapping map[string]string) *FileDocumentLoader {
	m := make(map[string]string, len(mapping))
	for iri, path := range mapping {
		m[iri] = path
	}
	return &FileDocumentLoader{
		mapping:  m,
		fallback: ld.NewDefaultDocumentLoader(nil),
		cache:    map[string]RemoteDocument{},
	}
}

// LoadDocument implements DocumentLoader.
func (l *FileDocumentLoader) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	if err := ctx.Err(); err != nil {
		return RemoteDocument{}, err
	}
	path, ok := l.mapping[iri]
	if !ok {
		remote, err := l.fallback.LoadDocument(iri)
		if err != nil {
			return RemoteDocument{}, err
		}
		return RemoteDocument{
			DocumentURL: remote.DocumentURL,
			Document:    remote.Document,
			ContextURL:  remote.ContextURL,
		}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if doc, ok := l.cache[iri]; ok {
		return doc, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("load context %s: %w", iri, err)
	}
	defer f.Close()
	doc, err := DecodeJSONLD(f, path)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("load context %s: %w", iri, err)
	}
	remote := RemoteDocument{DocumentURL: iri, Document: doc}
	l.cache[iri] = remote
	return remote, nil
}

// ParseContextMappings parses "IRI=path" pairs. The last '=' separates the
// IRI from the path, so IRIs with query strings are accepted.
func ParseContextMappings(pairs []string) (map[string]string, error) {
	mapping := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		i := strings.LastIndexByte(pair, '=')
		if i <= 0 || i == len(pair)-1 {
			return nil, fmt.Errorf("invalid context mapping %q: want IRI=path", pair)
		}
		mapping[pair[:i]] = pair[i+1:]
	}
	return mapping, nil
}
