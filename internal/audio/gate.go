// Package audio holds the PCM helpers used on the synthesized-audio path.
// Frames are 16-bit little-endian mono PCM.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	DefaultVolumeThreshold = 0.01
	DefaultMaxSilentFrames = 50
	// FadeRatio is the trailing share of a terminal frame ramped to zero.
	FadeRatio = 0.15
)

// Volume returns the RMS of a frame normalised to [0,1].
func Volume(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		f := float64(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
		sum += f * f
	}
	return math.Sqrt(sum/float64(n)) / 32768.0
}

// Gate drops runs of silent frames. Loud frames reset the silence counter;
// silent frames pass until more than maxSilent have been seen in a row, so
// short pauses inside an utterance are kept.
type Gate struct {
	mu        sync.Mutex
	threshold float64
	maxSilent int
	silent    int
}

func NewGate(threshold float64, maxSilent int) *Gate {
	if threshold <= 0 {
		threshold = DefaultVolumeThreshold
	}
	if maxSilent < 0 {
		maxSilent = DefaultMaxSilentFrames
	}
	return &Gate{threshold: threshold, maxSilent: maxSilent}
}

// Admit reports whether the frame should be forwarded.
func (g *Gate) Admit(pcm []byte) bool {
	loud := Volume(pcm) > g.threshold

	g.mu.Lock()
	defer g.mu.Unlock()
	if loud {
		g.silent = 0
		return true
	}
	g.silent++
	return g.silent <= g.maxSilent
}

func (g *Gate) Reset() {
	g.mu.Lock()
	g.silent = 0
	g.mu.Unlock()
}

func (g *Gate) SilentRun() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.silent
}

// FadeOut returns a copy of pcm whose trailing FadeRatio of samples is ramped
// linearly from full scale to zero.
func FadeOut(pcm []byte) []byte {
	out := make([]byte, len(pcm))
	copy(out, pcm)
	n := len(out) / 2
	fade := int(float64(n) * FadeRatio)
	if fade == 0 {
		return out
	}
	start := n - fade
	for i := 0; i < fade; i++ {
		// 1.0 on the first faded sample, 0.0 on the last
		var gain float64
		if fade > 1 {
			gain = 1.0 - float64(i)/float64(fade-1)
		}
		off := 2 * (start + i)
		s := int16(binary.LittleEndian.Uint16(out[off:]))
		binary.LittleEndian.PutUint16(out[off:], uint16(int16(float64(s)*gain)))
	}
	return out
}
