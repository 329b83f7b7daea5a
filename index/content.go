package index

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SourceIndex is a bleve in-memory full-text index over module sources.
// Raw sources are kept beside it for line-level match extraction.
type SourceIndex struct {
	mu      sync.RWMutex
	index   bleve.Index
	sources map[string]string // key: catalog key
}

// NewSourceIndex creates an empty in-memory source index.
func NewSourceIndex() (*SourceIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &SourceIndex{
		index:   bleveIndex,
		sources: make(map[string]string),
	}, nil
}

type sourceDocument struct {
	Content   string `json:"content"`
	Key       string `json:"key"`
	Namespace string `json:"namespace"`
	Kind      string `json:"kind"`
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.IncludeInAll = true
	docMapping.AddFieldMappingsAt("content", contentField)

	keyField := bleve.NewTextFieldMapping()
	keyField.Store = true
	keyField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("key", keyField)

	for _, name := range []string{"namespace", "kind"} {
		keyword := bleve.NewKeywordFieldMapping()
		keyword.Store = true
		keyword.IncludeInAll = false
		docMapping.AddFieldMappingsAt(name, keyword)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Index adds or replaces the source of a catalogued file.
func (si *SourceIndex) Index(file *ModuleFile, content string) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	si.sources[file.Key] = content
	doc := sourceDocument{
		Content:   content,
		Key:       file.Key,
		Namespace: file.Namespace,
		Kind:      string(file.Kind),
	}
	if err := si.index.Index(file.Key, doc); err != nil {
		return fmt.Errorf("indexing %s: %w", file.Key, err)
	}
	return nil
}

// Remove drops a source by catalog key.
func (si *SourceIndex) Remove(key string) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	delete(si.sources, key)
	if err := si.index.Delete(key); err != nil {
		return fmt.Errorf("removing %s from index: %w", key, err)
	}
	return nil
}

// Source returns the indexed source of a catalog key.
func (si *SourceIndex) Source(key string) (string, bool) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	content, ok := si.sources[key]
	return content, ok
}

// DocumentCount returns the number of indexed sources.
func (si *SourceIndex) DocumentCount() uint64 {
	si.mu.RLock()
	defer si.mu.RUnlock()
	count, _ := si.index.DocCount()
	return count
}

// Close releases the bleve index.
func (si *SourceIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.index.Close()
}

// Clear drops every document by swapping in a fresh index.
func (si *SourceIndex) Clear() error {
	si.mu.Lock()
	defer si.mu.Unlock()

	if err := si.index.Close(); err != nil {
		return fmt.Errorf("closing old index: %w", err)
	}
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating new index: %w", err)
	}
	si.index = fresh
	si.sources = make(map[string]string)
	return nil
}
