package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"hearsay/pkg/logging"
)

// WhisperTranscriber runs a local whisper.cpp style binary over captured
// audio. The binary path comes from WHISPER_PATH or the PATH lookup of
// "whisper".
type WhisperTranscriber struct {
	binPath string
	args    []string
}

// NewWhisperTranscriber locates the whisper binary. An error means no local
// recognizer is installed and the caller should fall back to typed input.
func NewWhisperTranscriber() (*WhisperTranscriber, error) {
	binPath := os.Getenv("WHISPER_PATH")
	if binPath == "" {
		found, err := exec.LookPath("whisper")
		if err != nil {
			return nil, fmt.Errorf("whisper binary not found, set WHISPER_PATH: %w", err)
		}
		binPath = found
	}
	return &WhisperTranscriber{
		binPath: binPath,
		// No timestamps, no progress: stdout carries only the transcript.
		args: []string{"-nt", "-np", "-f"},
	}, nil
}

// Transcribe writes the samples to a temporary WAV file and runs the
// recognizer over it.
func (w *WhisperTranscriber) Transcribe(samples []float32, sampleRate int) (string, error) {
	dir, err := os.MkdirTemp("", "hearsay-audio-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "capture.wav")
	if err := writeWAV(wavPath, samples, sampleRate); err != nil {
		return "", fmt.Errorf("failed to write capture: %w", err)
	}

	args := append(append([]string{}, w.args...), wavPath)
	out, err := exec.Command(w.binPath, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", w.binPath, err)
	}
	text := strings.TrimSpace(string(out))
	logging.Trace("whisper output: %q", text)
	return text, nil
}

// writeWAV saves mono float32 samples as 16-bit PCM WAV.
func writeWAV(filename string, samples []float32, sampleRate int) error {
	var buf bytes.Buffer

	rate := uint32(sampleRate)
	bitsPerSample := uint16(16)
	numChannels := uint16(1)
	byteRate := rate * uint32(numChannels) * uint32(bitsPerSample/8)
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := uint32(len(samples) * 2)
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, fileSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM format
	binary.Write(&buf, binary.LittleEndian, numChannels)
	binary.Write(&buf, binary.LittleEndian, rate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, bitsPerSample)
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)

	for _, sample := range samples {
		binary.Write(&buf, binary.LittleEndian, int16(sample*32767.0))
	}

	return os.WriteFile(filename, buf.Bytes(), 0644)
}
