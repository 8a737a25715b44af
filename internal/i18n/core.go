package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var embedded embed.FS

var (
	translatorMu sync.RWMutex
	translator   *I18n
)

// supportedLangs lists the languages shipped in locales/
var supportedLangs = []string{cnst.LangEN, cnst.LangES}

// Init builds the process-wide translator from the embedded bundles plus any
// *.toml files found in extraDir.
func Init(defaultLang, extraDir string) error {
	t, err := NewI18n(defaultLang)
	if err != nil {
		return err
	}
	if extraDir != "" {
		if err := t.LoadTranslations(extraDir); err != nil {
			return err
		}
	}
	translatorMu.Lock()
	translator = t
	translatorMu.Unlock()
	return nil
}

// GetTranslator returns the global translator, building the embedded default on first use
func GetTranslator() *I18n {
	translatorMu.RLock()
	t := translator
	translatorMu.RUnlock()
	if t != nil {
		return t
	}
	_ = Init(cnst.LangDefault, "")
	translatorMu.RLock()
	defer translatorMu.RUnlock()
	return translator
}

// I18n manages internationalization and translations
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang string
}

// NewI18n creates a translator preloaded with the embedded message files
func NewI18n(defaultLang string) (*I18n, error) {
	defaultLang = normalizeLang(defaultLang, cnst.LangDefault)
	bundle := i18n.NewBundle(language.Make(defaultLang))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(embedded, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(embedded, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return &I18n{bundle: bundle, defaultLang: defaultLang}, nil
}

// LoadTranslations loads translation files from the specified directory
func (i *I18n) LoadTranslations(translationsDir string) error {
	files, err := os.ReadDir(translationsDir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(translationsDir, file.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Translate returns a localized string for the given message ID and language.
// The message ID itself is returned when no translation exists.
func (i *I18n) Translate(msgID string, lang string, templateData map[string]any) string {
	localizer := i18n.NewLocalizer(i.bundle, lang, i.defaultLang)

	lc := &i18n.LocalizeConfig{MessageID: msgID}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}

	msg, err := localizer.Localize(lc)
	if err != nil {
		return msgID
	}
	return msg
}

// LangMiddleware stores the request language on the gin context
func LangMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cnst.XLang, LanguageFromRequest(c.Request))
		c.Next()
	}
}

// LanguageFromContext returns the language chosen by LangMiddleware
func LanguageFromContext(c *gin.Context) string {
	if lang := c.GetString(cnst.XLang); lang != "" {
		return lang
	}
	return LanguageFromRequest(c.Request)
}

// LanguageFromRequest extracts language preference from HTTP headers
func LanguageFromRequest(r *http.Request) string {
	if r == nil {
		return cnst.LangDefault
	}
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return normalizeLang(lang, cnst.LangDefault)
	}

	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLang)
		if err == nil {
			for _, tag := range tags {
				base, _ := tag.Base()
				if isSupported(base.String()) {
					return base.String()
				}
			}
		}
	}
	return cnst.LangDefault
}

// TranslateMessage translates a message ID using the context's language preference
func TranslateMessage(c *gin.Context, msgID string, data map[string]any) string {
	return GetTranslator().Translate(msgID, LanguageFromContext(c), data)
}

// normalizeLang standardizes language codes
func normalizeLang(lang, fallback string) string {
	code := strings.ToLower(strings.TrimSpace(strings.SplitN(lang, "-", 2)[0]))
	if isSupported(code) {
		return code
	}
	return fallback
}

func isSupported(code string) bool {
	for _, s := range supportedLangs {
		if s == code {
			return true
		}
	}
	return false
}
