package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	req := require.New(t)

	req.Equal(English, ParseLanguage("en"))
	req.Equal(Hindi, ParseLanguage(" HI "))
	req.Equal(AutoDetect, ParseLanguage("auto"))

	// Unknown and empty tags fall back instead of failing
	req.Equal(AutoDetect, ParseLanguage("klingon"))
	req.Equal(AutoDetect, ParseLanguage(""))
}

func TestLanguages_ReturnsCopy(t *testing.T) {
	req := require.New(t)
	langs := Languages()
	req.Len(langs, 9)
	req.Equal(English, langs[0])
	req.Equal(AutoDetect, langs[len(langs)-1])

	langs[0] = "xx"
	req.Equal(English, Languages()[0])
}

func TestDetectLanguage(t *testing.T) {
	req := require.New(t)

	req.Equal(AutoDetect, DetectLanguage("   "))
	req.Equal(Spanish, DetectLanguage("Hola, ¿cómo estás? Me gustaría reservar una mesa para dos personas esta noche."))
	req.Equal(German, DetectLanguage("Guten Morgen, ich möchte heute Abend einen Tisch für zwei Personen reservieren."))
	req.Equal(Japanese, DetectLanguage("こんにちは、今日はとても良い天気ですね。"))
	req.Equal(Hindi, DetectLanguage("नमस्ते, आप कैसे हैं? मैं आज शाम दो लोगों के लिए एक टेबल बुक करना चाहता हूँ।"))

	// No script to go on
	req.Equal(AutoDetect, DetectLanguage("123 456"))
}
