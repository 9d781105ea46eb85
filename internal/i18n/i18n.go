package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleNL = "nl"
	LocaleEN = "en"
	LocaleFR = "fr"

	DefaultLocale = LocaleNL
)

var supported = map[string]struct{}{
	LocaleNL: {},
	LocaleEN: {},
	LocaleFR: {},
}

// ResolveLocale picks the request locale from ?locale=, then Accept-Language.
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if q := NormalizeLocale(c.Query("locale")); q != "" {
		return q
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if loc := NormalizeLocale(tag); loc != "" {
			return loc
		}
	}
	return DefaultLocale
}

// NormalizeLocale maps tags such as "nl-BE" or "EN" onto a supported locale.
// It returns "" for unsupported input.
func NormalizeLocale(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if idx := strings.IndexAny(raw, "-_"); idx > 0 {
		raw = raw[:idx]
	}
	if _, ok := supported[raw]; ok {
		return raw
	}
	return ""
}

// T returns the translated message for key, falling back to English and
// finally to the key itself.
func T(locale, key string) string {
	if table, ok := messages[NormalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[LocaleEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf formats a translated message.
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
