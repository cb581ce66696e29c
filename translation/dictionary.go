package translation

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"
)

//go:embed data/*.json
var embeddedData embed.FS

// Dictionary domains, consulted in this order.
var domainFiles = []string{"commodity", "states", "districts", "markets", "variety"}

// LocalizedTerm is one dictionary entry in the three supported languages.
type LocalizedTerm struct {
	English  string `json:"english"`
	Hindi    string `json:"hindi"`
	Gujarati string `json:"gujarati"`
}

type localMatch struct {
	english  string
	language string
}

// Dictionary answers exact-match lookups between English and the local
// languages. When a term appears more than once the first occurrence in
// domain order wins.
type Dictionary struct {
	size      int
	fromEN    map[string]LocalizedTerm
	fromLocal map[string]localMatch
}

func newDictionary() *Dictionary {
	return &Dictionary{
		fromEN:    make(map[string]LocalizedTerm),
		fromLocal: make(map[string]localMatch),
	}
}

// DefaultDictionary returns the dictionary compiled into the binary.
func DefaultDictionary() (*Dictionary, error) {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		return nil, err
	}
	return LoadDictionary(sub)
}

// LoadDictionaryDir loads the domain files from a directory on disk.
func LoadDictionaryDir(dir string) (*Dictionary, error) {
	return LoadDictionary(os.DirFS(dir))
}

// LoadDictionary reads <domain>.json for every domain from fsys. A missing
// file is logged and skipped; a malformed one is an error.
func LoadDictionary(fsys fs.FS) (*Dictionary, error) {
	d := newDictionary()
	for _, domain := range domainFiles {
		raw, err := fs.ReadFile(fsys, domain+".json")
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("❌ Dictionary file %s.json not found, skipping", domain)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s dictionary: %w", domain, err)
		}

		var groups map[string][]LocalizedTerm
		if err := json.Unmarshal(raw, &groups); err != nil {
			return nil, fmt.Errorf("parse %s dictionary: %w", domain, err)
		}

		keys := make([]string, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, term := range groups[k] {
				d.add(term)
			}
		}
	}
	return d, nil
}

func (d *Dictionary) add(term LocalizedTerm) {
	term.English = strings.TrimSpace(term.English)
	term.Hindi = strings.TrimSpace(term.Hindi)
	term.Gujarati = strings.TrimSpace(term.Gujarati)
	d.size++

	if term.English != "" {
		if _, ok := d.fromEN[term.English]; !ok {
			d.fromEN[term.English] = term
		}
	}
	if term.Hindi != "" {
		if _, ok := d.fromLocal[term.Hindi]; !ok {
			d.fromLocal[term.Hindi] = localMatch{english: term.English, language: LangHindi}
		}
	}
	if term.Gujarati != "" {
		if _, ok := d.fromLocal[term.Gujarati]; !ok {
			d.fromLocal[term.Gujarati] = localMatch{english: term.English, language: LangGujarati}
		}
	}
}

// Len is the number of terms loaded.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return d.size
}

// Lookup translates text into target by exact match. Translating to English
// accepts either local language as input.
func (d *Dictionary) Lookup(text, target string) (string, bool) {
	if d == nil {
		return "", false
	}
	switch target {
	case LangEnglish:
		m, ok := d.fromLocal[text]
		if !ok || m.english == "" {
			return "", false
		}
		return m.english, true
	case LangHindi:
		term, ok := d.fromEN[text]
		if !ok || term.Hindi == "" {
			return "", false
		}
		return term.Hindi, true
	case LangGujarati:
		term, ok := d.fromEN[text]
		if !ok || term.Gujarati == "" {
			return "", false
		}
		return term.Gujarati, true
	}
	return "", false
}

// DetectLanguage reports which local language text belongs to, or "" when
// the dictionary does not know it.
func (d *Dictionary) DetectLanguage(text string) string {
	if d == nil {
		return ""
	}
	if m, ok := d.fromLocal[text]; ok {
		return m.language
	}
	return ""
}
