package language

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Definition captures every per-language knob the pipeline needs.
type Definition struct {
	// Code is the ISO 639-1 code used on the CLI (e.g. "en").
	Code string
	// DisplayName is the English name of the language (e.g. "Italian").
	DisplayName string
	// SystemPrompt steers the summarization backends.
	SystemPrompt string
	// SpokenName is the lower-case language name the transcription
	// service expects (e.g. "italian").
	SpokenName string
	// TTSCode is the language code for the basic TTS backend.
	TTSCode string
	// DefaultVoiceID is the premium voice used when none is configured.
	DefaultVoiceID string
}

var definitions = map[string]Definition{
	"en": {
		Code:           "en",
		SystemPrompt:   `You are an assistant whose job is to summarize the following text for a video. Only answer with what should be in the video. It should start, for example, with, "Today we are talking about [argument], [brief description of the argument]. [summary]"`,
		TTSCode:        "en",
		DefaultVoiceID: "pNInz6obpgDQGcFmaJgB",
	},
	"it": {
		Code:           "it",
		SystemPrompt:   "La tua lingua è l'italiano. Il tuo compito è quello di riassumere il seguente testo per un video. Rispondi solo con il testo che andrà nel video. Deve iniziare, ad esempio, con oggi parliamo di *argomento*, *molto breve descrizione dell'argomento*. *Testo del riassunto*.",
		TTSCode:        "it",
		DefaultVoiceID: "t3hJ92dgZhDVtsff084B",
	},
}

func init() {
	for code, def := range definitions {
		tag := language.MustParse(code)
		name := display.English.Languages().Name(tag)
		def.DisplayName = name
		def.SpokenName = strings.ToLower(name)
		definitions[code] = def
	}
}

// Lookup resolves a language definition from a CLI code. Regional variants
// such as "en-US" fall back to their base language.
func Lookup(code string) (Definition, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Definition{}, false
	}
	if def, ok := definitions[code]; ok {
		return def, true
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Definition{}, false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return Definition{}, false
	}
	def, ok := definitions[base.String()]
	return def, ok
}

// Supported returns all definitions ordered by code.
func Supported() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Codes returns the supported language codes ordered alphabetically.
func Codes() []string {
	defs := Supported()
	codes := make([]string, 0, len(defs))
	for _, def := range defs {
		codes = append(codes, def.Code)
	}
	return codes
}
