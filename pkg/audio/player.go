// pkg/audio/player.go
package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-strut/pkg/event"
	"github.com/opd-ai/go-strut/pkg/logging"
)

// DefaultLevel is the cue volume, as a linear gain
const DefaultLevel = 0.4

// Player plays editor cues through the system speaker. A Player that was
// never opened, or failed to open, silently drops every cue.
type Player struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	level  float64
	mixer  *beep.Mixer
	open   bool
	logger *logging.Logger

	// sink receives cue streams; replaced in tests
	sink func(beep.Streamer)
	subs []*event.Subscription
}

// NewPlayer creates a closed player
func NewPlayer(sampleRate int, logger *logging.Logger) *Player {
	if logger == nil {
		logger = logging.NewLogger()
	}
	p := &Player{
		rate:   beep.SampleRate(sampleRate),
		level:  DefaultLevel,
		mixer:  &beep.Mixer{},
		logger: logger.Component("audio"),
	}
	p.sink = p.addToMixer
	return p
}

// Open initializes the speaker. Failure leaves the player muted and is
// reported to the caller, who may ignore it.
func (p *Player) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.open {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		p.logger.Warn(context.Background(), "speaker unavailable, cues disabled", "error", err.Error())
		return logging.WrapError(err, "open speaker")
	}
	speaker.Play(p.mixer)
	p.open = true
	return nil
}

// Enabled reports whether cues are audible
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Play queues cue c
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return
	}
	p.sink(c.Streamer(p.rate, p.level))
}

func (p *Player) addToMixer(s beep.Streamer) {
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Attach plays cues for editor events published on bus
func (p *Player) Attach(bus *event.Bus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subs = append(p.subs,
		bus.Subscribe(event.NodeAdded, func(event.Event) { p.Play(CueNode) }),
		bus.Subscribe(event.LinkAdded, func(e event.Event) {
			if ee, ok := e.(*event.EditEvent); ok {
				p.Play(CueForKind(ee.Kind))
			}
		}),
		bus.Subscribe(event.PartRemoved, func(event.Event) { p.Play(CueRemove) }),
		bus.Subscribe(event.SaveFailed, func(event.Event) { p.Play(CueError) }),
	)
}

// Close detaches from the bus and releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	subs := p.subs
	p.subs = nil
	wasOpen := p.open
	p.open = false
	p.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
	if wasOpen {
		speaker.Lock()
		p.mixer.Clear()
		speaker.Unlock()
		speaker.Close()
	}
}
