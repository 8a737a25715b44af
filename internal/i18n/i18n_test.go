package i18n

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_EmbeddedBundles(t *testing.T) {
	tr, err := NewI18n("en")
	require.NoError(t, err)

	assert.Equal(t, "No token provided", tr.Translate("NO_TOKEN", "en", nil))
	assert.Equal(t, "No se proporcionó un token", tr.Translate("NO_TOKEN", "es", nil))
	// unsupported language falls back to the default
	assert.Equal(t, "Invalid token", tr.Translate("INVALID_TOKEN", "fr", nil))
	// unknown id is returned verbatim
	assert.Equal(t, "NOPE", tr.Translate("NOPE", "en", nil))
	assert.Equal(t, "Vehicle limit reached for your plan (5)",
		tr.Translate("VEHICLE_LIMIT_REACHED", "en", map[string]any{"Max": 5}))
}

func TestLoadTranslations_ExtraDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.en.toml"), []byte(`CUSTOM = "custom text"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	tr, err := NewI18n("en")
	require.NoError(t, err)
	require.NoError(t, tr.LoadTranslations(dir))
	assert.Equal(t, "custom text", tr.Translate("CUSTOM", "en", nil))

	assert.Error(t, tr.LoadTranslations(filepath.Join(dir, "missing")))
}

func TestLanguageFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, cnst.LangEN, LanguageFromRequest(req))

	req.Header.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.8")
	assert.Equal(t, cnst.LangES, LanguageFromRequest(req))

	req.Header.Set(cnst.XLang, "en-US")
	assert.Equal(t, cnst.LangEN, LanguageFromRequest(req))

	req.Header.Set(cnst.XLang, "de")
	assert.Equal(t, cnst.LangEN, LanguageFromRequest(req))

	assert.Equal(t, cnst.LangEN, LanguageFromRequest(nil))
}

func TestLangMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LangMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, TranslateMessage(c, "TENANT_NOT_FOUND", nil))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es")
	r.ServeHTTP(w, req)
	assert.Equal(t, "Organización no encontrada", w.Body.String())
}
