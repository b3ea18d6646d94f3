package i18n

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
)

// Catalog retrieves localized detail strings for Issue codes.
// meta carries the issue metadata (for example "min", "max" or "expected")
// that a message may embed.
type Catalog interface {
	Message(code, locale string, meta map[string]any) string
}

// supported lists the locales of the built-in dictionary; the first entry is
// the fallback.
var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// MatchLocale maps an arbitrary locale string ("ja-JP", "en_US", "fr") onto a
// built-in locale base ("en" or "ja").
func MatchLocale(locale string) string {
	if locale == "" {
		return "en"
	}
	_, idx := language.MatchStrings(matcher, locale)
	base, _ := supported[idx].Base()
	return base.String()
}

// dictCatalog is the built-in dictionary-based Catalog.
type dictCatalog struct{}

var messages = map[string]map[string]string{
	"en": {
		"field_missing":    "is required",
		"field_unknown":    "is not a known field",
		"value_invalid":    "is not an allowed value",
		"value_null":       "cannot be null",
		"type_invalid":     "has an invalid type",
		"string_too_short": "is too short (minimum is %v characters)",
		"string_too_long":  "is too long (maximum is %v characters)",
		"number_too_small": "must be greater than or equal to %v",
		"number_too_large": "must be less than or equal to %v",
		"array_too_small":  "must contain at least %v items",
		"array_too_large":  "must contain at most %v items",
		"depth_exceeded":   "is nested too deeply",
	},
	"ja": {
		"field_missing":    "必須項目です",
		"field_unknown":    "未知のキーです",
		"value_invalid":    "許可されていない値です",
		"value_null":       "null は指定できません",
		"type_invalid":     "型が不正です",
		"string_too_short": "短すぎます (最小 %v 文字)",
		"string_too_long":  "長すぎます (最大 %v 文字)",
		"number_too_small": "%v 以上である必要があります",
		"number_too_large": "%v 以下である必要があります",
		"array_too_small":  "%v 件以上の要素が必要です",
		"array_too_large":  "%v 件以下の要素である必要があります",
		"depth_exceeded":   "入れ子が深すぎます",
	},
}

// boundKey names the meta entry interpolated into bound messages.
var boundKey = map[string]string{
	"string_too_short": "min",
	"string_too_long":  "max",
	"number_too_small": "min",
	"number_too_large": "max",
	"array_too_small":  "min",
	"array_too_large":  "max",
}

func (dictCatalog) Message(code, locale string, meta map[string]any) string {
	msgs := messages[MatchLocale(locale)]
	msg, ok := msgs[code]
	if !ok {
		return code
	}
	if k, ok := boundKey[code]; ok {
		if v, ok := meta[k]; ok {
			return fmt.Sprintf(msg, v)
		}
		return fmt.Sprintf(msg, "?")
	}
	return msg
}

var (
	mu             sync.RWMutex
	currentCatalog Catalog = dictCatalog{}
	currentLang            = "en"
)

// SetLanguage switches the default locale used by T.
func SetLanguage(lang string) {
	mu.Lock()
	currentLang = MatchLocale(lang)
	mu.Unlock()
}

// SetCatalog replaces the Catalog implementation (not limited to the
// dictionary version). nil restores the built-in dictionary.
func SetCatalog(c Catalog) {
	mu.Lock()
	defer mu.Unlock()
	if c == nil {
		currentCatalog = dictCatalog{}
		return
	}
	currentCatalog = c
}

// Default returns the built-in dictionary catalog.
func Default() Catalog { return dictCatalog{} }

// T fetches a message for code in the current language.
func T(code string, meta map[string]any) string {
	mu.RLock()
	c, lang := currentCatalog, currentLang
	mu.RUnlock()
	return c.Message(code, lang, meta)
}

// TL fetches a message for code in an explicit locale.
func TL(code, locale string, meta map[string]any) string {
	mu.RLock()
	c := currentCatalog
	mu.RUnlock()
	return c.Message(code, locale, meta)
}
