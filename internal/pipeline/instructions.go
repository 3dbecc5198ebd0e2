package pipeline

import (
	"fmt"

	"github.com/dkeye/Tandem/internal/domain"
)

const defaultVoice = "Puck"

type languageProfile struct {
	voice   string
	targets map[domain.Language]string
}

var profiles = map[domain.Language]languageProfile{
	domain.English: {
		voice: "Puck",
		targets: map[domain.Language]string{
			domain.Hindi:    "Translate the following English text to natural Hindi (Devanagari script). Use conversational, everyday language that sounds natural to native Hindi speakers.",
			domain.Spanish:  "Translate the following English text to natural Spanish. Use conversational, everyday language.",
			domain.French:   "Translate the following English text to natural French. Use conversational, everyday language.",
			domain.German:   "Translate the following English text to natural German. Use conversational, everyday language.",
			domain.Chinese:  "Translate the following English text to natural Simplified Chinese. Use conversational, everyday language.",
			domain.Japanese: "Translate the following English text to natural Japanese. Use conversational, everyday language.",
			domain.Arabic:   "Translate the following English text to natural Arabic. Use conversational, everyday language.",
		},
	},
	domain.Hindi: {
		voice: "Kalpana",
		targets: map[domain.Language]string{
			domain.English:  "Translate the following Hindi text to natural English. Use conversational, everyday language.",
			domain.Spanish:  "Translate the following Hindi text to natural Spanish through English if needed.",
			domain.French:   "Translate the following Hindi text to natural French through English if needed.",
			domain.German:   "Translate the following Hindi text to natural German through English if needed.",
			domain.Chinese:  "Translate the following Hindi text to natural Chinese through English if needed.",
			domain.Japanese: "Translate the following Hindi text to natural Japanese through English if needed.",
			domain.Arabic:   "Translate the following Hindi text to natural Arabic through English if needed.",
		},
	},
	domain.Spanish: {
		voice: "Esperanza",
		targets: map[domain.Language]string{
			domain.English: "Translate the following Spanish text to natural English. Use conversational, everyday language.",
			domain.Hindi:   "Translate the following Spanish text to natural Hindi through English if needed.",
		},
	},
	domain.French: {
		voice: "Amelie",
		targets: map[domain.Language]string{
			domain.English: "Translate the following French text to natural English. Use conversational, everyday language.",
			domain.Hindi:   "Translate the following French text to natural Hindi through English if needed.",
		},
	},
	domain.AutoDetect: {
		voice: "Puck",
		targets: map[domain.Language]string{
			domain.English: "Detect the language and translate to natural English. Use conversational, everyday language.",
			domain.Hindi:   "Detect the language and translate to natural Hindi (Devanagari script).",
		},
	},
}

// Voice returns the synthesis voice for speakers of lang.
func Voice(lang domain.Language) string {
	if p, ok := profiles[lang]; ok {
		return p.voice
	}
	return defaultVoice
}

// Instruction returns the one-line translation directive for a language pair.
func Instruction(source, target domain.Language) string {
	if p, ok := profiles[source]; ok {
		if s, ok := p.targets[target]; ok {
			return s
		}
	}
	return fmt.Sprintf("Translate to %s. Use natural, conversational language.", target)
}

const systemTemplate = `You are a real-time translation assistant in a bidirectional conversation system.

IMPORTANT RULES:
1. %s
2. ONLY provide the translation - no explanations, no conversations, no extra text
3. Keep translations natural and conversational
4. Preserve the speaker's tone and intent
5. For very short utterances (like "ok", "yes", "no"), translate directly
6. If you hear unclear audio, respond with "[unclear]" in the target language
7. Maintain the same emotional tone as the original speaker
8. Use everyday, spoken language rather than formal written language

Current conversation: User speaks %s, translate to %s
`

func SystemInstruction(source, target domain.Language) string {
	return fmt.Sprintf(systemTemplate, Instruction(source, target), source, target)
}
