package violation

import "github.com/chenBenjamin97/hoopevents/pkg/tracking"

type action int

const (
	actionNoBall action = iota
	actionHolding
	//ball moving while still possessed, mid-dribble
	actionTransient
)

func (a action) String() string {
	switch a {
	case actionNoBall:
		return "no_ball"
	case actionHolding:
		return "holding"
	case actionTransient:
		return "transient"
	}
	return "unknown"
}

type playerState struct {
	action             action
	dribbleStopped     bool
	anchor             *tracking.Point
	violationCommitted bool
}

//releaseBall is applied to every tracked player who is not the holder on the current frame
func (s *playerState) releaseBall() {
	if s.action != actionNoBall {
		s.dribbleStopped = true
	}
	s.action = actionNoBall
	s.violationCommitted = false
	s.anchor = nil
}

//enterHolding starts a new holding episode anchored at pos
func (s *playerState) enterHolding(pos tracking.Point) {
	s.action = actionHolding
	s.dribbleStopped = true
	s.violationCommitted = false
	s.anchor = &pos
}
