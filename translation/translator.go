package translation

import (
	"context"
	"log"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	LangEnglish  = "en"
	LangHindi    = "hi"
	LangGujarati = "gu"
)

var languageNames = map[string]string{
	LangEnglish:  "English",
	LangHindi:    "हिंदी",
	LangGujarati: "ગુજરાતી",
}

// Source records where a translated string came from.
type Source string

const (
	SourceCustom      Source = "custom"
	SourceDictionary  Source = "dictionary"
	SourceRemote      Source = "remote"
	SourcePassthrough Source = "passthrough"
	SourceFallback    Source = "fallback"
)

// Result is the outcome of one translation. Text is always usable: on a
// remote failure it is the input and Err holds the cause.
type Result struct {
	Text   string
	Source Source
	Err    error
}

// Translator resolves text through custom entries, the dictionary and then
// the remote service.
type Translator struct {
	dict   *Dictionary
	remote Remote
	cache  Cache
	fanOut int

	mu     sync.RWMutex
	custom map[string]string
}

// New builds a translator. remote and cache may be nil.
func New(dict *Dictionary, remote Remote, cache Cache) *Translator {
	return &Translator{
		dict:   dict,
		remote: remote,
		cache:  cache,
		fanOut: defaultFanOut,
		custom: make(map[string]string),
	}
}

// IsTargetLanguage reports whether lang is a local language the API
// translates into.
func IsTargetLanguage(lang string) bool {
	return lang == LangHindi || lang == LangGujarati
}

// SupportedLanguages maps each language code to its native name.
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(languageNames))
	for k, v := range languageNames {
		out[k] = v
	}
	return out
}

// LanguageName returns the native name of a language code, or the code itself.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// AddCustomTranslation registers an override consulted before the dictionary.
// It also wins over batch renderings already held in the cache.
func (t *Translator) AddCustomTranslation(text, translation, target string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.custom[customKey(text, target)] = translation
}

// CustomCount returns the number of registered overrides.
func (t *Translator) CustomCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.custom)
}

func (t *Translator) customLookup(text, target string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.custom[customKey(text, target)]
	return v, ok
}

func customKey(text, target string) string {
	return target + "\x00" + text
}

// Translate renders English text in target. Unsupported targets and empty
// text pass through unchanged.
func (t *Translator) Translate(ctx context.Context, text, target string) Result {
	if !IsTargetLanguage(target) || strings.TrimSpace(text) == "" {
		return Result{Text: text, Source: SourcePassthrough}
	}
	if v, ok := t.customLookup(text, target); ok {
		return Result{Text: v, Source: SourceCustom}
	}
	if v, ok := t.dict.Lookup(text, target); ok {
		return Result{Text: v, Source: SourceDictionary}
	}
	return t.viaRemote(ctx, text, LangEnglish, target)
}

// ToEnglish renders text written in source as English.
func (t *Translator) ToEnglish(ctx context.Context, text, source string) Result {
	if !IsTargetLanguage(source) || strings.TrimSpace(text) == "" {
		return Result{Text: text, Source: SourcePassthrough}
	}
	if v, ok := t.customLookup(text, LangEnglish); ok {
		return Result{Text: v, Source: SourceCustom}
	}
	if v, ok := t.dict.Lookup(text, LangEnglish); ok {
		return Result{Text: v, Source: SourceDictionary}
	}
	return t.viaRemote(ctx, text, source, LangEnglish)
}

// DetectAndTranslateToEnglish normalises user input of unknown language to
// English. Mostly-ASCII text is assumed to be English already.
func (t *Translator) DetectAndTranslateToEnglish(ctx context.Context, text string) Result {
	if IsEnglishText(text) {
		return Result{Text: text, Source: SourcePassthrough}
	}
	if lang := t.dict.DetectLanguage(text); lang != "" {
		return t.ToEnglish(ctx, text, lang)
	}
	if v, ok := t.customLookup(text, LangEnglish); ok {
		return Result{Text: v, Source: SourceCustom}
	}
	return t.viaRemote(ctx, text, "auto", LangEnglish)
}

// DetectLanguage returns the dictionary language of text, or "".
func (t *Translator) DetectLanguage(text string) string {
	return t.dict.DetectLanguage(text)
}

func (t *Translator) viaRemote(ctx context.Context, text, source, target string) Result {
	if t.remote == nil {
		return Result{Text: text, Source: SourcePassthrough}
	}
	translated, err := t.remote.Translate(ctx, text, source, target)
	if err != nil {
		log.Printf("❌ Remote translation %s->%s of %q failed: %v", source, target, text, err)
		return Result{Text: text, Source: SourceFallback, Err: err}
	}
	return Result{Text: translated, Source: SourceRemote}
}

// IsEnglishText reports whether more than 80% of the characters of text are
// ASCII. Empty text counts as English.
func IsEnglishText(text string) bool {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return true
	}
	ascii := 0
	for _, r := range text {
		if r < utf8.RuneSelf {
			ascii++
		}
	}
	return float64(ascii)/float64(total) > 0.8
}
