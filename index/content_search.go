package index

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/modresolve-mcp/language"
)

// SearchResult groups the matching lines of one module.
type SearchResult struct {
	Key     string
	Matches []LineMatch
}

// LineMatch is one matching line with optional context.
type LineMatch struct {
	LineNumber    int
	LineText      string
	ContextBefore []string
	ContextAfter  []string
}

// SearchOptions configures a source search.
type SearchOptions struct {
	Query        string
	Key          string // exact catalog key; overrides KeyGlob
	KeyGlob      string
	Kind         language.Kind
	MaxResults   int
	ContextLines int
}

// Search runs a full-text query over module sources.
// Query format:
//   - plain text: match query
//   - "quoted text": phrase query
//   - /regex/: regexp query
func (si *SourceIndex) Search(options SearchOptions) ([]SearchResult, int, error) {
	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	if options.ContextLines < 0 {
		options.ContextLines = 0
	}
	if strings.TrimSpace(options.Query) == "" {
		return nil, 0, fmt.Errorf("empty query")
	}

	lineMatcher, err := newLineMatcher(options.Query)
	if err != nil {
		return nil, 0, err
	}

	q := buildQuery(options.Query)
	if options.Kind != "" {
		kindQuery := bleve.NewTermQuery(string(options.Kind))
		kindQuery.SetField("kind")
		q = bleve.NewConjunctionQuery(q, kindQuery)
	}

	request := bleve.NewSearchRequest(q)
	request.Size = options.MaxResults * 5 // filtered and grouped below
	request.Fields = []string{"key", "kind"}

	si.mu.RLock()
	defer si.mu.RUnlock()

	hits, err := si.index.Search(request)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	exactKey := strings.ReplaceAll(options.Key, "\\", "/")
	keyGlob := strings.ReplaceAll(options.KeyGlob, "\\", "/")

	var results []SearchResult
	totalMatches := 0
	for _, hit := range hits.Hits {
		key := hit.ID
		content, ok := si.sources[key]
		if !ok {
			continue
		}
		if exactKey != "" {
			if key != exactKey {
				continue
			}
		} else if keyGlob != "" {
			if matched, matchErr := doublestar.Match(keyGlob, key); matchErr != nil || !matched {
				continue
			}
		}

		lines := findMatchingLines(content, lineMatcher, options.ContextLines)
		if len(lines) == 0 {
			continue
		}
		totalMatches += len(lines)
		results = append(results, SearchResult{Key: key, Matches: lines})

		if len(results) >= options.MaxResults {
			break
		}
	}
	return results, totalMatches, nil
}

// buildQuery parses the query string into a bleve query.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)
	if inner, ok := delimited(queryString, "/"); ok {
		return bleve.NewRegexpQuery(inner)
	}
	if inner, ok := delimited(queryString, "\""); ok {
		return bleve.NewMatchPhraseQuery(inner)
	}
	return bleve.NewMatchQuery(queryString)
}

func delimited(s, delim string) (string, bool) {
	if len(s) > 2 && strings.HasPrefix(s, delim) && strings.HasSuffix(s, delim) {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// lineMatcher decides which lines of a hit are reported.
type lineMatcher func(line string) bool

func newLineMatcher(queryString string) (lineMatcher, error) {
	queryString = strings.TrimSpace(queryString)
	if inner, ok := delimited(queryString, "/"); ok {
		re, err := regexp.Compile("(?i)" + inner)
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression %q: %w", inner, err)
		}
		return re.MatchString, nil
	}
	if inner, ok := delimited(queryString, "\""); ok {
		queryString = inner
	}

	// Plain queries report lines holding the whole text, or failing
	// that any of its words, as bleve matched on words.
	term := strings.ToLower(queryString)
	words := strings.Fields(term)
	return func(line string) bool {
		lower := strings.ToLower(line)
		if strings.Contains(lower, term) {
			return true
		}
		if len(words) < 2 {
			return false
		}
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}, nil
}

func findMatchingLines(content string, match lineMatcher, contextLines int) []LineMatch {
	lines := strings.Split(content, "\n")

	var matches []LineMatch
	for i, line := range lines {
		if !match(line) {
			continue
		}
		m := LineMatch{LineNumber: i + 1, LineText: line}
		if contextLines > 0 {
			m.ContextBefore = append(m.ContextBefore, lines[max(0, i-contextLines):i]...)
			m.ContextAfter = append(m.ContextAfter, lines[i+1:min(len(lines), i+contextLines+1)]...)
		}
		matches = append(matches, m)
	}
	return matches
}
