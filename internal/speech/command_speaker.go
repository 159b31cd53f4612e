package speech

import (
	"fmt"
	"os/exec"
	"runtime"

	"hearsay/pkg/logging"
)

// CommandSpeaker shells out to the platform's text-to-speech program. It is
// the offline equivalent of the recognition side: no credentials, no network.
type CommandSpeaker struct {
	program string
	args    []string
}

// NewCommandSpeaker locates a usable TTS binary. On Linux it tries espeak-ng
// then espeak; on macOS it uses say. A nil Speaker and an error mean no TTS
// program is installed, in which case callers usually fall back to EchoSpeaker.
func NewCommandSpeaker() (*CommandSpeaker, error) {
	candidates := []string{"espeak-ng", "espeak"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"say"}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			logging.Debug("using %s for speech output", path)
			return &CommandSpeaker{program: path}, nil
		}
	}
	return nil, fmt.Errorf("no text-to-speech program found (tried %v)", candidates)
}

// Speak runs the TTS program and blocks until playback finishes. The Queue
// worker is the only intended caller, so blocking here is what serializes
// playback.
func (s *CommandSpeaker) Speak(text string) error {
	args := append(append([]string{}, s.args...), text)
	if err := exec.Command(s.program, args...).Run(); err != nil {
		return fmt.Errorf("%s failed: %w", s.program, err)
	}
	return nil
}

// EchoSpeaker prints utterances to the log instead of playing audio. Used
// when no TTS program is available and in headless runs.
type EchoSpeaker struct{}

func (EchoSpeaker) Speak(text string) error {
	logging.Info("SAY: %s", text)
	return nil
}
