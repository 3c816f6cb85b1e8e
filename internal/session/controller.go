// Package session implements the flashcard study session: navigation over a
// filtered view of a deck, grading and progress accounting.
package session

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

const (
	labelEmpty  = "No cards to display"
	labelFormat = "Card %d of %d"
)

// Pending identifies the deferred re-advance scheduled by a grade. It is
// honoured only if nothing else changed the session since it was issued.
type Pending struct {
	gen uint64
}

// Controller owns the state of one study session. It is not safe for
// concurrent use; Session adds locking on top.
type Controller struct {
	cards []*models.Card
	byID  map[int]*models.Card

	mode     models.Mode
	filter   models.Filter
	view     []*models.Card
	position int
	flipped  bool

	rng *rand.Rand
	gen uint64 // bumped by every navigation, filter change and grade
}

// NewController starts a session over cards with the unfiltered view at
// position 0. An unknown mode falls back to linear.
func NewController(cards []*models.Card, mode models.Mode, rng *rand.Rand) *Controller {
	if mode != models.ModeRandom {
		mode = models.ModeLinear
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	c := &Controller{
		cards:  append([]*models.Card(nil), cards...),
		byID:   make(map[int]*models.Card, len(cards)),
		mode:   mode,
		filter: models.FilterAll,
		rng:    rng,
	}
	for _, card := range c.cards {
		c.byID[card.ID] = card
	}
	c.view = c.derive()
	return c
}

// Flip toggles which side of the current card is shown.
func (c *Controller) Flip() {
	c.flipped = !c.flipped
}

// Advance moves to another card of the view. Linear mode steps by one and
// wraps at both ends. Random mode draws a different card going forward and
// steps back by one going backward. No-op on an empty view.
func (c *Controller) Advance(dir models.Direction) {
	if len(c.view) == 0 {
		return
	}
	c.gen++
	c.position = c.step(dir)
	c.flipped = false
}

// Grade sets the status of the displayed card. The view is left alone until
// Settle runs with the returned token. ok is false when there is nothing to
// grade.
func (c *Controller) Grade(status models.Status) (p Pending, ok bool) {
	if len(c.view) == 0 || !status.IsValid() {
		return Pending{}, false
	}
	shown := c.view[c.position]
	if card, found := c.byID[shown.ID]; found {
		card.Status = status
	}
	c.gen++
	return Pending{gen: c.gen}, true
}

// Settle runs the re-advance that follows a grade: the view is re-derived
// (the graded card may have left the filter) and the position advances as
// Advance(Forward) would. It reports false for a stale token.
func (c *Controller) Settle(p Pending) bool {
	if p.gen == 0 || p.gen != c.gen {
		return false
	}
	c.gen++
	c.view = c.derive()
	c.flipped = false
	if len(c.view) == 0 {
		c.position = 0
		return true
	}
	c.position = c.step(models.Forward)
	return true
}

// SetFilter changes the filter and repositions: to the first card in linear
// mode, to a random card in random mode.
func (c *Controller) SetFilter(f models.Filter) {
	switch f {
	case models.FilterPartial, models.FilterUnknown:
	default:
		f = models.FilterAll
	}
	c.gen++
	c.filter = f
	c.view = c.derive()
	c.position = 0
	if c.mode == models.ModeRandom && len(c.view) > 0 {
		c.position = c.rng.IntN(len(c.view))
	}
	c.flipped = false
}

// Stats counts statuses over the whole deck, not just the view.
func (c *Controller) Stats() models.Stats {
	return models.ComputeStats(c.cards)
}

// Current returns a copy of the displayed card.
func (c *Controller) Current() (models.Card, bool) {
	if len(c.view) == 0 {
		return models.Card{}, false
	}
	return *c.view[c.position], true
}

// Cards returns a copy of the deck in load order.
func (c *Controller) Cards() []models.Card {
	out := make([]models.Card, len(c.cards))
	for i, card := range c.cards {
		out[i] = *card
	}
	return out
}

// ViewIDs returns the ids of the current view in order.
func (c *Controller) ViewIDs() []int {
	ids := make([]int, len(c.view))
	for i, card := range c.view {
		ids[i] = card.ID
	}
	return ids
}

func (c *Controller) Mode() models.Mode     { return c.mode }
func (c *Controller) Filter() models.Filter { return c.filter }
func (c *Controller) Position() int         { return c.position }
func (c *Controller) Flipped() bool         { return c.flipped }
func (c *Controller) Len() int              { return len(c.view) }
func (c *Controller) Total() int            { return len(c.cards) }

// View renders the controller state.
func (c *Controller) View() models.View {
	v := models.View{
		Flipped: c.flipped,
		Total:   len(c.view),
		Filter:  c.filter,
		Mode:    c.mode,
		Stats:   c.Stats(),
	}
	v.Band = models.BandFor(v.Stats.SuccessRate)
	if len(c.view) == 0 {
		v.Empty = true
		v.Label = labelEmpty
		return v
	}
	card := c.view[c.position]
	v.Front = card.SideA
	v.Back = card.SideB
	v.Position = c.position + 1
	v.Label = fmt.Sprintf(labelFormat, v.Position, v.Total)
	v.CanNavigate = len(c.view) > 1
	return v
}

func (c *Controller) step(dir models.Direction) int {
	n := len(c.view)
	if dir == models.Forward && c.mode == models.ModeRandom {
		// Rejection sampling keeps the draw uniform over the other cards.
		next := c.rng.IntN(n)
		for n > 1 && next == c.position {
			next = c.rng.IntN(n)
		}
		return next
	}
	delta := 1
	if dir == models.Backward {
		delta = -1
	}
	return ((c.position+delta)%n + n) % n
}

func (c *Controller) derive() []*models.Card {
	view := make([]*models.Card, 0, len(c.cards))
	for _, card := range c.cards {
		if c.filter.Matches(card.Status) {
			view = append(view, card)
		}
	}
	return view
}
