package player

import "math"

// SwipeThreshold is the vertical displacement, in CSS pixels, a swipe must
// exceed to navigate
const SwipeThreshold = 50

// Navigation is the effect an input has on the player
type Navigation int

const (
	NavNone Navigation = iota
	NavAdvance
	NavRetreat
	NavExit
)

func (n Navigation) String() string {
	switch n {
	case NavAdvance:
		return "advance"
	case NavRetreat:
		return "retreat"
	case NavExit:
		return "exit"
	default:
		return "none"
	}
}

// ScrollState describes scrollable overlay text on the current slide
type ScrollState struct {
	ScrollTop      float64 `json:"scrollTop"`
	ScrollHeight   float64 `json:"scrollHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
}

func (s ScrollState) overflows() bool {
	return s.ScrollHeight > s.ViewportHeight
}

func (s ScrollState) atTop() bool {
	return s.ScrollTop <= 0
}

func (s ScrollState) atBottom() bool {
	return s.ScrollTop+s.ViewportHeight >= s.ScrollHeight-1
}

// Swipe is one touch gesture from touchstart to touchend
type Swipe struct {
	StartX float64      `json:"startX"`
	StartY float64      `json:"startY"`
	EndX   float64      `json:"endX"`
	EndY   float64      `json:"endY"`
	Scroll *ScrollState `json:"scroll,omitempty"`
}

// Classify maps a swipe to a navigation. Only a mostly vertical swipe past
// the threshold navigates: up advances, down retreats. If the slide has
// overflowing text that is not yet at the edge in the swipe direction, the
// swipe belongs to the text.
func (s Swipe) Classify() Navigation {
	dx := s.StartX - s.EndX
	dy := s.StartY - s.EndY

	if math.Abs(dy) <= math.Abs(dx) {
		return NavNone
	}

	var nav Navigation
	switch {
	case dy > SwipeThreshold:
		nav = NavAdvance
	case dy < -SwipeThreshold:
		nav = NavRetreat
	default:
		return NavNone
	}

	if s.Scroll != nil && s.Scroll.overflows() {
		if nav == NavAdvance && !s.Scroll.atBottom() {
			return NavNone
		}
		if nav == NavRetreat && !s.Scroll.atTop() {
			return NavNone
		}
	}
	return nav
}

// KeyNavigation maps a keyboard key to a navigation
func KeyNavigation(key string) Navigation {
	switch key {
	case "ArrowUp":
		return NavAdvance
	case "ArrowDown":
		return NavRetreat
	case "Escape":
		return NavExit
	default:
		return NavNone
	}
}
