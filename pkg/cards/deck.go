package cards

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrDeckEmpty = errors.New("deck is empty")

// Deck is consumed from its end: Draw removes and returns the last card.
type Deck []Card

// Rand is the source of randomness used to shuffle a deck.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mutex sync.Mutex
	rand  *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.rand.Intn(n)
}

var defaultRand = &lockedRand{
	rand: rand.New(rand.NewSource(time.Now().UnixNano())),
}

// DefaultRand is safe for concurrent use.
func DefaultRand() Rand {
	return defaultRand
}

// NewDeck returns all 52 cards face-down in suit-major order.
func NewDeck() Deck {
	deck := make(Deck, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Suit: suit, Rank: rank, FaceUp: false})
		}
	}
	return deck
}

// BuildShuffledDeck returns a fresh 52-card deck shuffled with Fisher-Yates.
// A nil rnd uses DefaultRand.
func BuildShuffledDeck(rnd Rand) Deck {
	if rnd == nil {
		rnd = DefaultRand()
	}
	deck := NewDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Draw removes the last card of the deck.
func (d *Deck) Draw() (Card, error) {
	n := len(*d)
	if n == 0 {
		return Card{}, ErrDeckEmpty
	}
	card := (*d)[n-1]
	*d = (*d)[:n-1]
	return card, nil
}

func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	return append(Deck{}, d...)
}
