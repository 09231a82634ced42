// Package player implements full-screen playback of a slide deck: the
// Idle/Presenting state machine, input mapping and the per-visit quiz.
package player

import "anniversary-timeline/internal/models"

// State of the player
type State int

const (
	Idle State = iota
	Presenting
)

func (s State) String() string {
	if s == Presenting {
		return "presenting"
	}
	return "idle"
}

// Deck is the slide sequence and cursor the player walks
type Deck interface {
	Len() int
	At(i int) (models.Slide, bool)
	Cursor() int
	SetCursor(i int) bool
}

// Player drives playback over a Deck
type Player struct {
	deck  Deck
	state State
	quiz  QuizEngine
}

func New(deck Deck) *Player {
	return &Player{deck: deck}
}

func (p *Player) State() State {
	return p.state
}

// Index is the cursor while presenting
func (p *Player) Index() (int, bool) {
	if p.state != Presenting {
		return 0, false
	}
	return p.deck.Cursor(), true
}

// Quiz exposes the quiz engine of the current visit
func (p *Player) Quiz() *QuizEngine {
	return &p.quiz
}

// Present starts playback at the first slide. An empty deck stays Idle.
func (p *Player) Present() bool {
	if p.deck.Len() == 0 {
		return false
	}
	p.state = Presenting
	p.goTo(0)
	return true
}

// Advance moves to the next slide; ignored on the last one
func (p *Player) Advance() bool {
	if p.state != Presenting {
		return false
	}
	next := p.deck.Cursor() + 1
	if next >= p.deck.Len() {
		return false
	}
	p.goTo(next)
	return true
}

// Retreat moves to the previous slide; ignored on the first one
func (p *Player) Retreat() bool {
	if p.state != Presenting {
		return false
	}
	prev := p.deck.Cursor() - 1
	if prev < 0 {
		return false
	}
	p.goTo(prev)
	return true
}

// Exit returns to the editor
func (p *Player) Exit() bool {
	if p.state != Presenting {
		return false
	}
	p.state = Idle
	return true
}

// Navigate applies a classified input
func (p *Player) Navigate(nav Navigation) bool {
	switch nav {
	case NavAdvance:
		return p.Advance()
	case NavRetreat:
		return p.Retreat()
	case NavExit:
		return p.Exit()
	default:
		return false
	}
}

// HandleKey applies a keyboard key
func (p *Player) HandleKey(key string) bool {
	return p.Navigate(KeyNavigation(key))
}

// HandleSwipe applies a touch gesture
func (p *Player) HandleSwipe(s Swipe) bool {
	return p.Navigate(s.Classify())
}

// Select answers the quiz of the current slide
func (p *Player) Select(answerID string) (Outcome, bool) {
	if p.state != Presenting {
		return Outcome{}, false
	}
	return p.quiz.Select(answerID)
}

// Reconcile re-checks the player after the deck was edited: an emptied
// deck ends playback, and a different slide under the cursor or a changed
// quiz on the current one starts a new quiz visit.
func (p *Player) Reconcile() bool {
	if p.state != Presenting {
		return false
	}
	if p.deck.Len() == 0 {
		p.state = Idle
		p.quiz.Reset("", nil)
		return true
	}
	slide, ok := p.deck.At(p.deck.Cursor())
	if !ok {
		p.goTo(p.deck.Len() - 1)
		return true
	}
	if slide.ID != p.quiz.SlideID() || !slide.Quiz.Equal(p.quiz.quiz) {
		p.quiz.Reset(slide.ID, slide.Quiz)
		return true
	}
	return false
}

func (p *Player) goTo(i int) {
	p.deck.SetCursor(i)
	slide, _ := p.deck.At(i)
	p.quiz.Reset(slide.ID, slide.Quiz)
}
