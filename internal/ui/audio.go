package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/hailam/chessrules/internal/board"
)

// SoundType identifies a sound effect.
type SoundType int

const (
	SoundMove SoundType = iota
	SoundCapture
	SoundCheck
	SoundCastle
	SoundPromote
	SoundInvalid
	SoundGameEnd
)

const sampleRate = 44100

// AudioManager plays procedurally generated sound effects.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates a new audio manager.
func NewAudioManager() *AudioManager {
	am := &AudioManager{
		context: audio.NewContext(sampleRate),
		sounds:  make(map[SoundType][]byte),
		enabled: true,
		volume:  0.5,
	}
	am.sounds[SoundMove] = click(440, 0.08, 0.3)
	am.sounds[SoundCapture] = click(330, 0.12, 0.5)
	am.sounds[SoundCheck] = synth(0.15, 0.4, attackDecay, sine(880))
	am.sounds[SoundCastle] = concat(click(400, 0.06, 0.3), silence(0.05), click(440, 0.06, 0.24))
	am.sounds[SoundPromote] = concat(synth(0.08, 0.3, attackDecay, sine(523.25)), synth(0.12, 0.3, attackDecay, sine(783.99)))
	am.sounds[SoundInvalid] = synth(0.1, 0.15, linearDecay, func(t float64) float64 {
		return math.Sin(2*math.Pi*150*t) + 0.3*math.Sin(4*math.Pi*150*t)
	})
	am.sounds[SoundGameEnd] = synth(0.4, 0.5, plateau, func(t float64) float64 {
		// C major
		return (math.Sin(2*math.Pi*261.63*t) + math.Sin(2*math.Pi*329.63*t) + math.Sin(2*math.Pi*392.00*t)) / 3
	})
	return am
}

// soundForMove picks the effect for a committed move.
func soundForMove(m board.Move, givesCheck bool) SoundType {
	switch {
	case givesCheck:
		return SoundCheck
	case m.IsPromotion():
		return SoundPromote
	case m.IsCastling():
		return SoundCastle
	case m.IsCapture():
		return SoundCapture
	}
	return SoundMove
}

// envelope maps progress in [0,1] to a gain.
type envelope func(progress float64) float64

func attackDecay(p float64) float64 {
	if p < 0.1 {
		return p / 0.1
	}
	return 1.0 - (p-0.1)/0.9
}

func linearDecay(p float64) float64 { return 1.0 - p }

func plateau(p float64) float64 {
	switch {
	case p < 0.1:
		return p / 0.1
	case p > 0.7:
		return (1.0 - p) / 0.3
	}
	return 1.0
}

func sine(freq float64) func(t float64) float64 {
	return func(t float64) float64 { return math.Sin(2 * math.Pi * freq * t) }
}

// synth renders wave through env as 16-bit stereo PCM.
func synth(duration, amplitude float64, env envelope, wave func(t float64) float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		putSample(data, i, wave(t)*env(t/duration)*amplitude)
	}
	return data
}

// click is a short percussive knock with a little noise for a wooden feel.
func click(freq, duration, amplitude float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		noise := (math.Sin(float64(i)*0.3) + math.Sin(float64(i)*0.7)) * 0.3
		putSample(data, i, (math.Sin(2*math.Pi*freq*t)+noise)*math.Exp(-t*30)*amplitude)
	}
	return data
}

func silence(duration float64) []byte {
	return make([]byte, int(sampleRate*duration)*4)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// putSample writes v to both channels of frame i.
func putSample(data []byte, i int, v float64) {
	v = math.Max(-1, math.Min(1, v))
	val := int16(v * 32767)
	data[i*4] = byte(val)
	data[i*4+1] = byte(val >> 8)
	data[i*4+2] = byte(val)
	data[i*4+3] = byte(val >> 8)
}

// Play plays a sound effect. Overlapping sounds each get their own player.
func (am *AudioManager) Play(sound SoundType) {
	if !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled returns whether audio is enabled.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
