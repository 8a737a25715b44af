package cnst

const (
	// XLang is the header (and gin context key) carrying the preferred language
	XLang = "X-Lang"

	LangEN      = "en"
	LangES      = "es"
	LangDefault = LangEN
)
