package actions

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var (
	ackExpressions = []string{"ooo", "wow!", "ok!", "heyo!", "got it!", "alright!"}
	ackResponses   = []string{
		"wrapping!",
		"one moment please!",
		"generating!",
		"let's see what happened!",
		"starting your wrapped!",
		"getting your stats!",
		"let's wrap this!",
	}
	loadingPhrases = []string{
		"almost there...",
		"doing some quick math...",
		"wow this channel talks a lot...",
		"still crunching...",
		"thinking...",
		"wrapping it up...",
		"dolphins can hold their breath underwater for eight to ten minutes...",
		"the sky is blue...",
		"stealing your messages...",
		"are you ready...",
	}
	finishedPhrases = []string{
		"i'm done!",
		"here's what I found!",
		"it's time!",
		"those are some big numbers...",
		"finally!",
		"finished!",
		"all wrapped for you!",
		"thank you for using channelwrapped",
		"it's wrapped time!",
		"it's rewind time!",
		"thank you for your patience",
	}
)

const (
	busyMessage        = "I'm already wrapping this channel, hang tight!"
	invalidYearMessage = "I can only wrap years from %d to %d."
)

// Phrases picks the bot's chat lines. It is safe for concurrent use.
type Phrases struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPhrases seeds the picker; a fixed seed gives a fixed sequence.
func NewPhrases(seed uint64) *Phrases {
	return &Phrases{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *Phrases) pick(options []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return options[p.rng.IntN(len(options))]
}

// Acknowledgement is the first threaded reply, e.g. "wow! getting your stats!".
func (p *Phrases) Acknowledgement() string {
	return p.pick(ackExpressions) + " " + p.pick(ackResponses)
}

// Loading is the in-place update shown while collecting.
func (p *Phrases) Loading(count int) string {
	return fmt.Sprintf("%s (%d messages so far)", p.pick(loadingPhrases), count)
}

func (p *Phrases) Finished() string {
	return p.pick(finishedPhrases)
}
