package subprocess

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgnsrekt/newsreel/narration"
)

// BaseWordsPerMinute is the speaking rate used for Rate 1.0.
const BaseWordsPerMinute = 175

// Dialect describes how to drive one speech command line tool.
type Dialect struct {
	// Name identifies the engine, e.g. "espeak".
	Name string
	// Binary is looked up in PATH unless it is an absolute path.
	Binary string
	// GOOS restricts the dialect to one operating system when set.
	GOOS string
	// Args returns the arguments for speaking u. The text itself is written
	// to the process's stdin.
	Args func(u narration.Utterance) []string
	// Input returns what is written to stdin, u.Text when nil.
	Input func(u narration.Utterance) string
	// ListArgs lists the installed voices when run.
	ListArgs []string
	// ParseVoices parses the output of ListArgs.
	ParseVoices func(out []byte) []narration.VoiceProfile
}

// Espeak drives espeak-ng.
func Espeak() Dialect {
	return Dialect{
		Name:        "espeak",
		Binary:      "espeak-ng",
		Args:        espeakArgs,
		ListArgs:    []string{"--voices"},
		ParseVoices: ParseEspeakVoices,
	}
}

// Say drives the macOS say command.
func Say() Dialect {
	return Dialect{
		Name:        "say",
		Binary:      "say",
		GOOS:        "darwin",
		Args:        sayArgs,
		Input:       sayInput,
		ListArgs:    []string{"-v", "?"},
		ParseVoices: ParseSayVoices,
	}
}

func espeakArgs(u narration.Utterance) []string {
	args := []string{"--stdin"}
	if u.Voice != nil && u.Voice.Lang != "" {
		args = append(args, "-v", strings.ToLower(u.Voice.Lang))
	} else if u.Lang != "" {
		args = append(args, "-v", strings.ToLower(strings.ReplaceAll(u.Lang, "_", "-")))
	}
	args = append(args,
		"-s", strconv.Itoa(wordsPerMinute(u.Rate)),
		"-p", strconv.Itoa(scale(u.Pitch, 50, 0, 99)),
		"-a", strconv.Itoa(scale(u.Volume, 100, 0, 200)),
	)
	return args
}

func sayArgs(u narration.Utterance) []string {
	args := []string{"-f", "-"}
	if u.Voice != nil && u.Voice.Name != "" {
		args = append(args, "-v", u.Voice.Name)
	}
	return append(args, "-r", strconv.Itoa(wordsPerMinute(u.Rate)))
}

// sayInput prefixes the text with say's embedded volume command.
func sayInput(u narration.Utterance) string {
	if u.Volume <= 0 || u.Volume >= 1 {
		return u.Text
	}
	return fmt.Sprintf("[[volm %.2f]] %s", u.Volume, u.Text)
}

func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	return int(math.Round(BaseWordsPerMinute * rate))
}

// scale maps a 1.0-centred factor onto a tool's integer range.
func scale(factor float64, unit, lo, hi int) int {
	if factor <= 0 {
		factor = 1
	}
	v := int(math.Round(factor * float64(unit)))
	return max(lo, min(hi, v))
}

// ParseEspeakVoices parses `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
func ParseEspeakVoices(out []byte) []narration.VoiceProfile {
	var voices []narration.VoiceProfile
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		name := strings.ReplaceAll(fields[3], "_", " ")
		if strings.HasSuffix(fields[2], "/F") {
			name += " Female"
		}
		voices = append(voices, narration.VoiceProfile{
			Name: name,
			Lang: fields[1],
		})
	}
	return voices
}

var sayVoiceRe = regexp.MustCompile(`^(.+?)\s+([a-z]{2,3}[_-][A-Za-z0-9]+)\s+#`)

// ParseSayVoices parses `say -v ?`:
//
//	Samantha            en_US    # Hello! My name is Samantha.
func ParseSayVoices(out []byte) []narration.VoiceProfile {
	var voices []narration.VoiceProfile
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := sayVoiceRe.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		voices = append(voices, narration.VoiceProfile{
			Name: strings.TrimSpace(m[1]),
			Lang: strings.ReplaceAll(m[2], "_", "-"),
		})
	}
	return voices
}
