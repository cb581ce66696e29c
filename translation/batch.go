package translation

import (
	"context"
	"slices"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const defaultFanOut = 8

// cache namespace for translations into English from any language
const englishAuto = "en-auto"

// Field selects a string field of a record for batch translation.
type Field[T any] func(*T) *string

// TranslateSet translates every distinct value once and returns a mapping
// from each input value to its rendering in target.
func (t *Translator) TranslateSet(ctx context.Context, values []string, target string) map[string]string {
	if !IsTargetLanguage(target) {
		return identity(values)
	}
	return t.resolveSet(ctx, values, target, func(ctx context.Context, v string) Result {
		return t.Translate(ctx, v, target)
	}, func(v string) (string, bool) {
		return t.customLookup(v, target)
	})
}

// EnglishSet maps every distinct value to English, detecting each value's language.
func (t *Translator) EnglishSet(ctx context.Context, values []string) map[string]string {
	return t.resolveSet(ctx, values, englishAuto, t.DetectAndTranslateToEnglish, func(v string) (string, bool) {
		if IsEnglishText(v) {
			return "", false
		}
		return t.customLookup(v, LangEnglish)
	})
}

// resolveSet serves a set from the cache when it can. Custom overrides are
// applied on top, so entries added after a set was cached still show.
func (t *Translator) resolveSet(ctx context.Context, values []string, namespace string,
	resolve func(context.Context, string) Result, custom func(string) (string, bool)) map[string]string {
	distinct := distinctSorted(values)
	out := make(map[string]string, len(distinct))
	if len(distinct) == 0 {
		return out
	}

	key := CacheKey(distinct, namespace)
	if t.cache != nil {
		if cached, ok := t.cache.Get(ctx, key); ok && len(cached) == len(distinct) {
			for i, v := range distinct {
				out[v] = cached[i]
			}
			overlay(out, custom)
			return out
		}
	}

	translated := make([]string, len(distinct))
	var degraded atomic.Bool
	var g errgroup.Group
	g.SetLimit(t.fanOut)
	for i, v := range distinct {
		g.Go(func() error {
			r := resolve(ctx, v)
			translated[i] = r.Text
			if r.Source == SourceFallback {
				degraded.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Fallback renderings stay out of the cache so the next request retries them.
	if t.cache != nil && !degraded.Load() {
		t.cache.Set(ctx, key, translated)
	}

	for i, v := range distinct {
		out[v] = translated[i]
	}
	overlay(out, custom)
	return out
}

func overlay(out map[string]string, custom func(string) (string, bool)) {
	for v := range out {
		if c, ok := custom(v); ok {
			out[v] = c
		}
	}
}

// BatchTranslate returns a copy of records with the selected fields rendered
// in target. Each distinct field value is translated once per field.
func BatchTranslate[T any](ctx context.Context, t *Translator, records []T, target string, fields ...Field[T]) []T {
	if !IsTargetLanguage(target) || len(records) == 0 {
		return records
	}
	return applyFields(records, fields, func(values []string) map[string]string {
		return t.TranslateSet(ctx, values, target)
	})
}

// BatchToEnglish returns a copy of records with the selected fields
// normalised to English.
func BatchToEnglish[T any](ctx context.Context, t *Translator, records []T, fields ...Field[T]) []T {
	if len(records) == 0 {
		return records
	}
	return applyFields(records, fields, func(values []string) map[string]string {
		return t.EnglishSet(ctx, values)
	})
}

func applyFields[T any](records []T, fields []Field[T], translate func([]string) map[string]string) []T {
	out := slices.Clone(records)
	for _, field := range fields {
		values := make([]string, 0, len(out))
		for i := range out {
			values = append(values, *field(&out[i]))
		}
		mapping := translate(values)
		for i := range out {
			p := field(&out[i])
			if v, ok := mapping[*p]; ok {
				*p = v
			}
		}
	}
	return out
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func identity(values []string) map[string]string {
	out := make(map[string]string, len(values))
	for _, v := range values {
		out[v] = v
	}
	return out
}
