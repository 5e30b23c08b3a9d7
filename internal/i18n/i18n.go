// Package i18n loads the board's message catalogs and formats user-facing
// text in the configured locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every catalog key must exist in.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds every locale's messages.
type Bundle struct {
	locales map[string]map[string]string
}

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

var (
	registerOnce sync.Once
	registerErr  error
	defaultSet   *Bundle
)

// LoadFromFS reads locales/<locale>/<namespace>.yaml files from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := b.add(path, file); err != nil {
			return nil, err
		}
	}
	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(path string, file catalogFile) error {
	fromPath := filepath.Base(filepath.Dir(path))
	locale := strings.TrimSpace(file.Locale)
	if locale != fromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, locale, fromPath)
	}
	if file.Messages == nil {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}
	msgs, ok := b.locales[locale]
	if !ok {
		msgs = map[string]string{}
		b.locales[locale] = msgs
	}
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if _, dup := msgs[key]; dup {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", path, key, locale)
		}
		msgs[key] = value
	}
	return nil
}

// Locales lists the available locales.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for l := range b.locales {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Missing returns the base-locale keys absent from locale.
func (b *Bundle) Missing(locale string) []string {
	var out []string
	msgs := b.locales[locale]
	for key := range b.locales[BaseLocale] {
		if _, ok := msgs[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Register installs every message into the x/text default catalog.
func (b *Bundle) Register() error {
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for key, value := range b.locales[locale] {
			if err := message.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
	}
	return nil
}

func ensureRegistered() error {
	registerOnce.Do(func() {
		defaultSet, registerErr = LoadFromFS(embeddedFS)
		if registerErr == nil {
			registerErr = defaultSet.Register()
		}
	})
	return registerErr
}

// Translator formats catalog keys for one locale.
type Translator struct {
	p   *message.Printer
	tag language.Tag
}

// New returns a Translator for the closest supported match to locale.
// An empty locale selects BaseLocale.
func New(locale string) (Translator, error) {
	if err := ensureRegistered(); err != nil {
		return Translator{}, err
	}
	if strings.TrimSpace(locale) == "" {
		locale = BaseLocale
	}
	want, err := language.Parse(locale)
	if err != nil {
		return Translator{}, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	supported := []language.Tag{language.MustParse(BaseLocale)}
	for _, l := range defaultSet.Locales() {
		if l != BaseLocale {
			supported = append(supported, language.MustParse(l))
		}
	}
	_, idx, _ := language.NewMatcher(supported).Match(want)
	tag := supported[idx]
	return Translator{p: message.NewPrinter(tag), tag: tag}, nil
}

// Default returns the base-locale translator.
func Default() Translator {
	t, err := New(BaseLocale)
	if err != nil {
		// The base catalog is embedded; failing here means the binary is broken.
		panic(err)
	}
	return t
}

// T formats key with args. Unknown keys are returned as-is.
func (t Translator) T(key string, args ...any) string {
	p := t.p
	if p == nil {
		_ = ensureRegistered()
		p = message.NewPrinter(language.MustParse(BaseLocale))
	}
	return p.Sprintf(key, args...)
}

// Locale returns the selected locale tag.
func (t Translator) Locale() string {
	return t.tag.String()
}
