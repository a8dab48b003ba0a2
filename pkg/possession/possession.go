//Package possession decides, frame by frame, which tracked player holds the ball
package possession

import (
	"fmt"
	"sort"

	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
)

//Config holds the distance thresholds used to assign possession
type Config struct {
	//PossessionThreshold is the max distance between the ball center and a player's bounding box for that player to qualify
	PossessionThreshold float64
	//ContinuityThreshold is the looser distance within which the previous holder keeps the ball
	ContinuityThreshold float64
}

func DefaultConfig() Config {
	return Config{
		PossessionThreshold: 50,
		ContinuityThreshold: 75,
	}
}

func (c Config) Validate() error {
	if c.PossessionThreshold < 0 || c.ContinuityThreshold < 0 {
		return fmt.Errorf("possession thresholds must not be negative, got %+v", c)
	}
	return nil
}

//frameContext is what every rule sees when deciding possession on a single frame
type frameContext struct {
	ball       tracking.Box
	ballCenter tracking.Point
	players    tracking.FrameTracks
	prevHolder tracking.TrackID
}

//rule returns the holder it decided on, or false when it does not apply to this frame
type rule func(cfg Config, fc *frameContext) (tracking.TrackID, bool)

//Detector assigns ball possession from player and ball bounding boxes
type Detector struct {
	cfg   Config
	rules []rule
}

func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg: cfg,
		//order matters, first matching rule wins
		rules: []rule{continuityRule, nearestPlayerRule},
	}
}

//distanceToBall is 0 when the player box overlaps the ball box, otherwise the distance from the ball center to the player box
func distanceToBall(player, ball tracking.Box, ballCenter tracking.Point) float64 {
	if player.Overlaps(ball) {
		return 0
	}
	return player.DistanceTo(ballCenter)
}

//continuityRule keeps the previous frame's holder while the ball stays within the looser threshold, this avoids flicker from box jitter
func continuityRule(cfg Config, fc *frameContext) (tracking.TrackID, bool) {
	if !fc.prevHolder.Valid() {
		return tracking.NoTrack, false
	}

	box, ok := fc.players.Box(fc.prevHolder)
	if !ok {
		return tracking.NoTrack, false
	}

	if distanceToBall(box, fc.ball, fc.ballCenter) <= cfg.ContinuityThreshold {
		return fc.prevHolder, true
	}

	return tracking.NoTrack, false
}

type candidate struct {
	id           tracking.TrackID
	distance     float64
	centerOffset float64
}

//nearestPlayerRule picks the closest qualifying player, ties broken by distance to the player's center and then by the lower id
func nearestPlayerRule(cfg Config, fc *frameContext) (tracking.TrackID, bool) {
	candidates := make([]candidate, 0)
	for id, t := range fc.players {
		if t.BBox == nil {
			continue
		}

		d := distanceToBall(*t.BBox, fc.ball, fc.ballCenter)
		if d <= cfg.PossessionThreshold {
			candidates = append(candidates, candidate{id: id, distance: d, centerOffset: t.BBox.Center().Distance(fc.ballCenter)})
		}
	}

	if len(candidates) == 0 {
		return tracking.NoTrack, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.centerOffset != b.centerOffset {
			return a.centerOffset < b.centerOffset
		}
		return a.id < b.id
	})

	return candidates[0].id, true
}

//Detect returns the holder of the ball on every frame, tracking.NoTrack where nobody qualifies or the ball was not detected.
//players and balls must have the same length.
func (d *Detector) Detect(players, balls []tracking.FrameTracks) []tracking.TrackID {
	res := tracking.NoPossession(len(players))
	prev := tracking.NoTrack

	for frame := range players {
		if frame >= len(balls) {
			break
		}

		ball, ok := balls[frame].Ball()
		if !ok {
			prev = tracking.NoTrack
			continue
		}

		fc := &frameContext{
			ball:       ball,
			ballCenter: ball.Center(),
			players:    players[frame],
			prevHolder: prev,
		}

		holder := tracking.NoTrack
		for _, r := range d.rules {
			if id, ok := r(d.cfg, fc); ok {
				holder = id
				break
			}
		}

		res[frame] = holder
		prev = holder
	}

	return res
}
