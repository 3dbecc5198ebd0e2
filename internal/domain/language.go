package domain

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Language is a participant's spoken/preferred language tag.
type Language string

const (
	English    Language = "en"
	Hindi      Language = "hi"
	Spanish    Language = "es"
	French     Language = "fr"
	German     Language = "de"
	Chinese    Language = "zh"
	Japanese   Language = "ja"
	Arabic     Language = "ar"
	AutoDetect Language = "auto"
)

var languages = []Language{English, Hindi, Spanish, French, German, Chinese, Japanese, Arabic, AutoDetect}

// Languages returns every supported tag in enumeration order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

func (l Language) Valid() bool {
	for _, known := range languages {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLanguage never fails: unknown or empty tags become AutoDetect.
func ParseLanguage(s string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if l.Valid() {
		return l
	}
	return AutoDetect
}

// minDetectConfidence is the lowest whatlanggo confidence accepted as a
// detection among the supported languages.
const minDetectConfidence = 0.1

var detectOptions = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Hin: true,
		whatlanggo.Spa: true,
		whatlanggo.Fra: true,
		whatlanggo.Deu: true,
		whatlanggo.Cmn: true,
		whatlanggo.Jpn: true,
		whatlanggo.Arb: true,
	},
}

// DetectLanguage guesses the language of text among the supported
// languages. Text with no recognizable script, or a low-confidence guess, is
// AutoDetect.
func DetectLanguage(text string) Language {
	if strings.TrimSpace(text) == "" {
		return AutoDetect
	}
	info := whatlanggo.DetectWithOptions(text, detectOptions)
	if info.Confidence < minDetectConfidence {
		return AutoDetect
	}
	l := Language(info.Lang.Iso6391())
	if l == AutoDetect || !l.Valid() {
		return AutoDetect
	}
	return l
}
