// Package language holds the per-language narration settings.
//
// Each supported language carries the summarization system prompt, the
// spoken-language name the transcription service expects, the language code
// for the basic TTS backend, and the default premium voice identifier.
// Lookup normalizes arbitrary BCP 47 input (e.g. "en-US") to its base code
// before matching so CLI input stays forgiving.
package language
