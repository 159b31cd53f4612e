package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mutablelogic/go-media/pkg/ffmpeg"

	"hearsay/internal/speech"
	"hearsay/pkg/logging"
)

// Transcriber converts captured mono float32 audio into text. The concrete
// recognition backend (whisper, a cloud API) lives behind this interface and
// is injected at startup.
type Transcriber interface {
	Transcribe(samples []float32, sampleRate int) (string, error)
}

// DefaultDevices is the capture fallback chain, tried in order.
var DefaultDevices = []string{"pulse:default", "alsa:default"}

// MicListener records from a microphone via ffmpeg device input and hands
// the captured audio to a Transcriber. It implements speech.Listener.
type MicListener struct {
	mu          sync.Mutex
	transcriber Transcriber
	devices     []string
	sampleRate  int
	listening   bool
}

// NewMicListener creates a listener using the given transcriber and capture
// devices. An empty device list uses DefaultDevices.
func NewMicListener(transcriber Transcriber, devices []string) *MicListener {
	if len(devices) == 0 {
		devices = DefaultDevices
	}
	return &MicListener{
		transcriber: transcriber,
		devices:     devices,
		sampleRate:  16000,
	}
}

func (m *MicListener) open() (*ffmpeg.Reader, error) {
	var lastErr error
	for _, dev := range m.devices {
		input, err := ffmpeg.Open(dev,
			ffmpeg.OptInputOpt("sample_rate", "16000"),
			ffmpeg.OptInputOpt("channels", "1"),
			ffmpeg.OptInputOpt("format", "s16"),
		)
		if err != nil {
			logging.Debug("AUDIO: failed to open %s: %v", dev, err)
			lastErr = err
			continue
		}
		logging.Info("AUDIO: capturing from %s", dev)
		return input, nil
	}
	return nil, fmt.Errorf("no microphone available (tried %s): %w",
		strings.Join(m.devices, ", "), lastErr)
}

// Listen captures up to phraseLimit of audio and returns the recognized
// text, lowercased. It returns "" when nothing was heard before the timeout
// and speech.ErrUnavailable when no capture device can be opened or the
// transcriber fails.
func (m *MicListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	m.mu.Lock()
	if m.listening {
		m.mu.Unlock()
		return "", fmt.Errorf("already listening")
	}
	m.listening = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.listening = false
		m.mu.Unlock()
	}()

	input, err := m.open()
	if err != nil {
		logging.Error("AUDIO: %v", err)
		return "", speech.ErrUnavailable
	}
	defer input.Close()

	maxSamples := int(phraseLimit.Seconds() * float64(m.sampleRate))
	if maxSamples <= 0 {
		maxSamples = m.sampleRate * 8
	}
	buffer := make([]float32, 0, maxSamples)

	captureCtx, cancel := context.WithTimeout(ctx, timeout+phraseLimit)
	defer cancel()

	mapfn := func(stream int, par *ffmpeg.Par) (*ffmpeg.Par, error) {
		return par, nil
	}
	var full = errors.New("phrase limit reached")
	err = input.Decode(captureCtx, mapfn, func(stream int, frame *ffmpeg.Frame) error {
		if frame == nil {
			return nil
		}
		data := frame.Bytes(0)
		if len(data) == 0 {
			return nil
		}
		samples, err := convertPCM16ToFloat32(data)
		if err != nil {
			return err
		}
		buffer = append(buffer, samples...)
		if len(buffer) >= maxSamples {
			return full
		}
		return nil
	})
	if err != nil && !errors.Is(err, full) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, io.EOF) {
		logging.Error("AUDIO: capture decode error: %v", err)
		return "", speech.ErrUnavailable
	}
	if len(buffer) == 0 {
		return "", nil
	}

	text, err := m.transcriber.Transcribe(buffer, m.sampleRate)
	if err != nil {
		logging.Error("AUDIO: transcription failed: %v", err)
		return "", speech.ErrUnavailable
	}
	text = strings.ToLower(strings.TrimSpace(text))
	if text != "" {
		logging.Info("AUDIO: heard %q (%.2fs of audio)", text, float64(len(buffer))/float64(m.sampleRate))
	}
	return text, nil
}

// convertPCM16ToFloat32 converts 16-bit little-endian PCM bytes to float32
// samples in [-1, 1].
func convertPCM16ToFloat32(pcmData []byte) ([]float32, error) {
	if len(pcmData)%2 != 0 {
		return nil, fmt.Errorf("PCM data length must be even")
	}
	samples := make([]float32, len(pcmData)/2)
	for i := 0; i < len(samples); i++ {
		sample := int16(binary.LittleEndian.Uint16(pcmData[i*2:]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples, nil
}
