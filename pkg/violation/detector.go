//Package violation tracks hold/dribble cycles of the ball holder and counts travel and double dribble violations
package violation

import (
	"fmt"

	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
)

type Config struct {
	//TravelThreshold is how far (px) a holding player may move from where the hold started
	TravelThreshold float64
	//HoldDurationSeconds is how long the ball must stay stationary to count as held
	HoldDurationSeconds float64
	//HoldStationaryThreshold is the max ball displacement (px) allowed inside the hold window
	HoldStationaryThreshold float64
	//DribbleStartStabilityThreshold is the max vertical change (px) between the two "stable" samples of a dribble start
	DribbleStartStabilityThreshold float64
}

func DefaultConfig() Config {
	return Config{
		TravelThreshold:                30,
		HoldDurationSeconds:            0.35,
		HoldStationaryThreshold:        8,
		DribbleStartStabilityThreshold: 5,
	}
}

func (c Config) Validate() error {
	if c.HoldDurationSeconds <= 0 {
		return fmt.Errorf("violation.hold_duration_seconds must be positive, got %v", c.HoldDurationSeconds)
	}
	if c.TravelThreshold <= 0 || c.HoldStationaryThreshold <= 0 || c.DribbleStartStabilityThreshold <= 0 {
		return fmt.Errorf("violation thresholds must be positive, got %+v", c)
	}
	return nil
}

//Detector is a per-player state machine (no_ball -> holding <-> transient), advanced once per frame for the ball holder.
//A Detector holds per-run state, use a new one for every video.
type Detector struct {
	cfg            Config
	holdHistoryLen int
	players        map[tracking.TrackID]*playerState
}

func NewDetector(cfg Config, fps float64) *Detector {
	holdLen := int(cfg.HoldDurationSeconds * fps)
	if holdLen < utils.MinHoldHistoryLength {
		holdLen = utils.MinHoldHistoryLength
	}

	return &Detector{
		cfg:            cfg,
		holdHistoryLen: holdLen,
		players:        make(map[tracking.TrackID]*playerState),
	}
}

//HoldHistoryLength returns the number of frames a hold is decided on
func (d *Detector) HoldHistoryLength() int {
	return d.holdHistoryLen
}

func (d *Detector) state(id tracking.TrackID) *playerState {
	s, ok := d.players[id]
	if !ok {
		s = &playerState{action: actionNoBall}
		d.players[id] = s
	}
	return s
}

//isHolding is true when all recent ball centers exist and none moved further than the stationary threshold from the first one
func (d *Detector) isHolding(history []*tracking.Point) bool {
	if len(history) < d.holdHistoryLen {
		return false
	}

	first := history[0]
	for _, p := range history {
		if p == nil || first == nil {
			return false
		}
		if p.Distance(*first) >= d.cfg.HoldStationaryThreshold {
			return false
		}
	}

	return true
}

//isStartingDribble matches 2 stable samples followed by 2 samples moving down (y grows downwards)
func (d *Detector) isStartingDribble(history []*tracking.Point) bool {
	if len(history) < utils.DribbleStartWindow {
		return false
	}

	p1, p2, p3, p4 := history[0], history[1], history[2], history[3]
	if p1 == nil || p2 == nil || p3 == nil || p4 == nil {
		return false
	}

	stableBefore := abs(p2.Y-p1.Y) < d.cfg.DribbleStartStabilityThreshold
	movingDown := p4.Y > p3.Y+1 && p3.Y > p2.Y+1

	return stableBefore && movingDown
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

//Detect returns cumulative travel and double dribble counts for every frame. A count grows exactly on the frame
//a new violation is confirmed. All three slices must have the same length.
func (d *Detector) Detect(players, balls []tracking.FrameTracks, possession []tracking.TrackID) (travels []int, doubleDribbles []int) {
	numFrames := len(players)
	travels = make([]int, numFrames)
	doubleDribbles = make([]int, numFrames)
	totalTravels, totalDoubleDribbles := 0, 0

	centers := tracking.BallCenters(balls)

	for frame := 0; frame < numFrames; frame++ {
		holder := tracking.NoTrack
		if frame < len(possession) {
			holder = possession[frame]
		}

		for id, s := range d.players {
			if id != holder {
				s.releaseBall()
			}
		}

		if holder.Valid() {
			if box, ok := players[frame].Box(holder); ok {
				t, dd := d.advance(d.state(holder), box.Center(), centers, frame)
				totalTravels += t
				totalDoubleDribbles += dd
			}
		}

		travels[frame] = totalTravels
		doubleDribbles[frame] = totalDoubleDribbles
	}

	return travels, doubleDribbles
}

//advance moves the holder's state machine by one frame and returns how many travels and double dribbles were confirmed on it
func (d *Detector) advance(s *playerState, playerPos tracking.Point, centers []*tracking.Point, frame int) (travels, doubleDribbles int) {
	holding := d.isHolding(utils.Window(centers, frame, d.holdHistoryLen))
	startingDribble := d.isStartingDribble(utils.Window(centers, frame, utils.DribbleStartWindow))

	if startingDribble && s.dribbleStopped && !s.violationCommitted {
		doubleDribbles++
		s.violationCommitted = true
		s.dribbleStopped = false
	}

	if holding {
		if s.action != actionHolding {
			s.enterHolding(playerPos)
		}
	} else {
		s.action = actionTransient
		s.anchor = nil
	}

	if s.action == actionHolding && s.anchor != nil && !s.violationCommitted {
		if playerPos.Distance(*s.anchor) > d.cfg.TravelThreshold {
			travels++
			s.violationCommitted = true
			s.anchor = &playerPos
		}
	}

	return travels, doubleDribbles
}
