package settings

import "regexp"

// Keys of the default registry.
const (
	KeyWPM          = "wpm"
	KeyEffectiveWPM = "effectivewpm"
	KeyExtraSpace   = "extraspace"
	KeyQRQ          = "qrq"
	KeyTone         = "tone"
	KeyWaveform     = "waveform"
	KeySNR          = "snr"
	KeyTitle        = "title"
	KeyFormat       = "format"
	KeySimplify     = "simplify"
	KeyNoAccents    = "noaccents"
	KeyNumbers      = "numbers"
	KeyShuffle      = "shuffle"
	KeyCharset      = "charset"
	KeyGroupCount   = "groupcount"
	KeyWordCount    = "wordcount"
	KeyWordLen      = "wordlen"
	KeyNewsCount    = "newscount"
	KeyNewsTime     = "newstime"
	KeyNewsFilter   = "newsfilter"
	KeySolution     = "solution"
)

// Waveforms understood by the renderer.
const (
	WaveformSine     = "sine"
	WaveformSawtooth = "sawtooth"
	WaveformSquare   = "square"
)

// Output formats.
const (
	FormatAudio = "audio"
	FormatVoice = "voice"
)

// Shuffle modes.
const (
	ShuffleNothing = "nothing"
	ShuffleWords   = "words"
	ShuffleLetters = "letters"
	ShuffleBoth    = "both"
)

// Solution delivery modes.
const (
	SolutionNone = "none"
	SolutionText = "text"
	SolutionPDF  = "pdf"
)

var titlePattern = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)

var defaultRegistry = MustNewRegistry(
	Setting{Key: KeyWPM, Default: "25", Help: "speed in words per minute, a comma separated list sends one file per speed",
		Validate: IntList(KeyWPM, "wpm", 1, 100, 10)},
	Setting{Key: KeyEffectiveWPM, Default: None, Help: "effective (Farnsworth) speed, none to disable",
		Validate: Optional(IntRange(KeyEffectiveWPM, "effective wpm", 1, 100))},
	Setting{Key: KeyExtraSpace, Default: None, Help: "extra space between words, none to disable",
		Validate: Optional(FloatRange(KeyExtraSpace, "extra space", 0, 10))},
	Setting{Key: KeyQRQ, Default: None, Help: "minutes after which speed grows by 1wpm, none to disable",
		Validate: Optional(IntRange(KeyQRQ, "qrq interval", 1, 60))},
	Setting{Key: KeyTone, Default: "600", Help: "tone frequency in Hertz",
		Validate: IntRange(KeyTone, "frequency", 200, 1200)},
	Setting{Key: KeyWaveform, Default: WaveformSine, Help: "tone waveform (sine, sawtooth, square)",
		Validate: Enum(KeyWaveform, WaveformSine, WaveformSawtooth, WaveformSquare)},
	Setting{Key: KeySNR, Default: None, Help: "background noise level from -10 to 10 db, none to disable",
		Validate: Optional(IntRange(KeySNR, "snr", -10, 10))},
	Setting{Key: KeyTitle, Default: "CW Text", Help: "answer file name, -wpm- is replaced by the speed",
		Validate: Pattern(KeyTitle, titlePattern, "Please use only letters, numbers, blank, underscore, hyphen (A-Za-z0-9 _-)", 50)},
	Setting{Key: KeyFormat, Default: FormatAudio, Help: "answer as audio file or as voice message",
		Validate: Enum(KeyFormat, FormatAudio, FormatVoice)},
	Setting{Key: KeySimplify, Default: "on", Help: "replace symbols that can't be sent in Morse with blanks",
		Validate: Bool(KeySimplify)},
	Setting{Key: KeyNoAccents, Default: "off", Help: "replace accented letters with plain ones",
		Validate: Bool(KeyNoAccents)},
	Setting{Key: KeyNumbers, Default: "off", Help: "spell out numbers after the digits",
		Validate: Bool(KeyNumbers)},
	Setting{Key: KeyShuffle, Default: ShuffleNothing, Help: "shuffle your messages (nothing, words, letters, both)",
		Validate: Enum(KeyShuffle, ShuffleNothing, ShuffleWords, ShuffleLetters, ShuffleBoth)},
	Setting{Key: KeyCharset, Default: "abcdefghijklmnopqrstuvwxyz0123456789", Help: "symbols used by /groups and /words",
		Validate: Charset(KeyCharset, 64)},
	Setting{Key: KeyGroupCount, Default: "10", Help: "number of groups sent by /groups",
		Validate: IntRange(KeyGroupCount, "number of groups", 1, 100)},
	Setting{Key: KeyWordCount, Default: "10", Help: "number of words sent by /words",
		Validate: IntRange(KeyWordCount, "number of words", 1, 100)},
	Setting{Key: KeyWordLen, Default: "2-8", Help: "min-max length of words sent by /words",
		Validate: IntPair(KeyWordLen, "word length", 1, 30)},
	Setting{Key: KeyNewsCount, Default: "5", Help: "number of news sent by /news",
		Validate: IntRange(KeyNewsCount, "number of news", 1, 20)},
	Setting{Key: KeyNewsTime, Default: "off", Help: "prefix news with their publication time",
		Validate: Bool(KeyNewsTime)},
	Setting{Key: KeyNewsFilter, Default: None, Help: "send only news whose title contains this text, none to disable",
		Validate: Optional(FreeText(KeyNewsFilter, 50))},
	Setting{Key: KeySolution, Default: SolutionText, Help: "how the clear text of groups, words, qso and news is sent (none, text, pdf)",
		Validate: Enum(KeySolution, SolutionNone, SolutionText, SolutionPDF)},
)

// Default returns the registry of the bot.
func Default() *Registry {
	return defaultRegistry
}
