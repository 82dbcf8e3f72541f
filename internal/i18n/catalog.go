// Package i18n loads the embedded message catalogs and resolves
// request languages against them.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the translations of every supported locale.
type Catalog struct {
	builder   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
}

// Load parses the embedded locale files. fallback is used when a request
// names no supported language; it must be one of the embedded locales.
func Load(fallback string) (*Catalog, error) {
	return LoadFromFS(embeddedLocales, fallback)
}

func LoadFromFS(fsys fs.FS, fallback string) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	fallbackTag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fallback locale %q: %w", fallback, err)
	}

	builder := catalog.NewBuilder(catalog.Fallback(fallbackTag))
	var tags []language.Tag
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var file localeFile
		err = yaml.Unmarshal(data, &file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid locale %q: %w", path, file.Locale, err)
		}
		for key, msg := range file.Messages {
			err = builder.SetString(tag, key, msg)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to set %q: %w", path, key, err)
			}
		}
		tags = append(tags, tag)
	}

	// The matcher prefers the first tag when nothing matches.
	idx := -1
	for i, tag := range tags {
		if tag == fallbackTag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("fallback locale %q has no catalog", fallback)
	}
	tags[0], tags[idx] = tags[idx], tags[0]

	return &Catalog{
		builder:   builder,
		supported: tags,
		matcher:   language.NewMatcher(tags),
		fallback:  fallbackTag,
	}, nil
}

// Match picks the best supported language for an Accept-Language header.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return c.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	_, idx, _ := c.matcher.Match(tags...)
	return c.supported[idx]
}

func (c *Catalog) Fallback() language.Tag {
	return c.fallback
}

func (c *Catalog) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(c.builder))
}

// Sprintf formats the message stored under key for the given language.
// Unknown keys are returned as they are.
func (c *Catalog) Sprintf(tag language.Tag, key string, args ...any) string {
	return c.Printer(tag).Sprintf(key, args...)
}
