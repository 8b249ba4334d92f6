package realtime

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Verdict classifies a raw transcript before it reaches the generator.
type Verdict int

const (
	VerdictUsable Verdict = iota
	VerdictEmpty
	VerdictTooShort
	VerdictNoise
)

// fillerPattern matches pure interjections: 음, 어, 아, 흠 and their drawn-out
// or punctuated variants.
var fillerPattern = regexp.MustCompile(`^(음+|어+|아+|흠+|그+|저+|uh+|um+|hmm+)[.…!?~\s]*$`)

// jamoOnlyPattern matches transcripts made of bare Korean jamo, which never
// come from real speech.
var jamoOnlyPattern = regexp.MustCompile(`^[\x{3131}-\x{3163}\s]+$`)

// boilerplate holds broadcast/credits phrases speech models are known to
// hallucinate on silence or background audio, plus stray control words.
var boilerplate = []string{
	"시청해 주셔서 감사합니다",
	"시청해주셔서 감사합니다",
	"구독과 좋아요",
	"구독 부탁드립니다",
	"다음 영상에서 만나요",
	"자막 제공",
	"광고를 포함하고 있습니다",
	"MBC 뉴스",
	"KBS 뉴스",
	"뉴스를 마칩니다",
	"thanks for watching",
	"subscribe",
}

// Classify is a pure function; it never mutates any state.
func Classify(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return VerdictEmpty
	}
	if utf8.RuneCountInString(trimmed) < 3 {
		return VerdictTooShort
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range boilerplate {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return VerdictNoise
		}
	}
	if fillerPattern.MatchString(lower) {
		return VerdictNoise
	}
	if jamoOnlyPattern.MatchString(trimmed) {
		return VerdictNoise
	}
	return VerdictUsable
}
