// Package transcript merges word-level recognition tokens into
// speaker-attributed utterances and writes them to the output file.
package transcript

import (
	"strings"

	"github.com/voxkit/scribe/internal/stt"
)

// UnknownSpeaker labels tokens the service could not attribute to a
// speaker. Missing speaker identifiers normalize to this sentinel
// before comparison, so unattributed runs still merge.
const UnknownSpeaker = "unknown_speaker"

// Utterance is a maximal run of consecutive same-speaker token texts.
// StartSeconds is the start of the first token, expressed in the
// original recording's timeline.
type Utterance struct {
	Speaker      string
	Text         string
	StartSeconds float64
}

// Grouper accumulates chronological word tokens into utterances. It is
// stateful on purpose: feeding the tokens of consecutive segments into
// the same Grouper keeps a speaker who talks across a segment boundary
// in a single utterance instead of splitting it at the cut.
type Grouper struct {
	speaker string
	text    strings.Builder
	start   float64
	open    bool
}

// Feed consumes one segment's tokens, shifted into the recording's
// timeline by offsetSeconds, and returns the utterances completed so
// far. The trailing in-progress utterance stays buffered until either
// a different speaker arrives or Flush is called.
//
// Token texts are concatenated as-is: the service already includes the
// whitespace between words.
func (g *Grouper) Feed(tokens []stt.WordToken, offsetSeconds float64) []Utterance {
	var done []Utterance
	for _, tok := range tokens {
		speaker := tok.SpeakerID
		if speaker == "" {
			speaker = UnknownSpeaker
		}

		if !g.open {
			g.openUtterance(speaker, tok.Text, tok.StartSeconds+offsetSeconds)
			continue
		}
		if speaker == g.speaker {
			g.text.WriteString(tok.Text)
			continue
		}
		if u, ok := g.close(); ok {
			done = append(done, u)
		}
		g.openUtterance(speaker, tok.Text, tok.StartSeconds+offsetSeconds)
	}
	return done
}

// Flush emits the final open utterance, if any. Call once after the
// last segment has been fed.
func (g *Grouper) Flush() []Utterance {
	if u, ok := g.close(); ok {
		return []Utterance{u}
	}
	return nil
}

func (g *Grouper) openUtterance(speaker, text string, start float64) {
	g.speaker = speaker
	g.text.Reset()
	g.text.WriteString(text)
	g.start = start
	g.open = true
}

// close ends the current utterance. Utterances with empty text are
// never emitted.
func (g *Grouper) close() (Utterance, bool) {
	if !g.open {
		return Utterance{}, false
	}
	g.open = false
	if g.text.Len() == 0 {
		return Utterance{}, false
	}
	u := Utterance{Speaker: g.speaker, Text: g.text.String(), StartSeconds: g.start}
	g.text.Reset()
	return u, true
}
