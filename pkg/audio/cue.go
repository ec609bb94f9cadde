// pkg/audio/cue.go
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/opd-ai/go-strut/pkg/world"
)

// Cue is a short feedback sound
type Cue int

const (
	CueNode Cue = iota
	CueLink
	CueRope
	CueHydraulic
	CueSpring
	CueRemove
	CueError
)

// CueForKind returns the placement cue of a link kind
func CueForKind(k world.Kind) Cue {
	switch k {
	case world.KindRope:
		return CueRope
	case world.KindHydraulic:
		return CueHydraulic
	case world.KindSpring:
		return CueSpring
	default:
		return CueLink
	}
}

// waveType selects the oscillator shape
type waveType int

const (
	waveSine waveType = iota
	waveSquare
	waveSaw
)

// oscillator is a fixed-length tone
type oscillator struct {
	freq     float64
	phase    float64
	length   int
	position int
	wave     waveType
	rate     beep.SampleRate
}

func newOscillator(freq float64, d time.Duration, wave waveType, rate beep.SampleRate) *oscillator {
	return &oscillator{freq: freq, length: rate.N(d), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case waveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case waveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case waveSaw:
			val = 2 * (o.phase - 0.5)
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, total, attack, release time.Duration, rate beep.SampleRate) *envelope {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(total),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; left < e.release {
			vol = math.Max(float64(left)/float64(e.release), 0)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// tone is an enveloped oscillator
func tone(freq float64, d time.Duration, wave waveType, rate beep.SampleRate) beep.Streamer {
	return newEnvelope(newOscillator(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// Streamer builds the sound of c at the given rate
func (c Cue) Streamer(rate beep.SampleRate, level float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueNode:
		s = tone(660, 60*time.Millisecond, waveSine, rate)
	case CueLink:
		s = beep.Seq(tone(440, 40*time.Millisecond, waveSine, rate), tone(660, 50*time.Millisecond, waveSine, rate))
	case CueRope:
		s = tone(330, 90*time.Millisecond, waveSaw, rate)
	case CueHydraulic:
		s = beep.Seq(tone(220, 60*time.Millisecond, waveSquare, rate), tone(247, 60*time.Millisecond, waveSquare, rate))
	case CueSpring:
		s = beep.Mix(tone(523, 80*time.Millisecond, waveSine, rate), tone(784, 80*time.Millisecond, waveSine, rate))
	case CueRemove:
		s = beep.Seq(tone(440, 40*time.Millisecond, waveSine, rate), tone(294, 60*time.Millisecond, waveSine, rate))
	default:
		s = tone(110, 120*time.Millisecond, waveSaw, rate)
	}
	return volume(s, level)
}
