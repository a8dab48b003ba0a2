//Package passes classifies possession changes between two players as passes (same team) or interceptions (other team)
package passes

import (
	"fmt"

	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
)

type Config struct {
	//ShotWindow is the number of frames after a shot attempt in which a change of possession counts as a rebound, not an interception
	ShotWindow int
}

func DefaultConfig() Config {
	return Config{ShotWindow: 24} //~1 second at 24 fps
}

func (c Config) Validate() error {
	if c.ShotWindow < 0 {
		return fmt.Errorf("interception.shot_window must not be negative, got %d", c.ShotWindow)
	}
	return nil
}

type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

//transition is a change of possession between two distinct valid holders
type transition struct {
	frame    int
	prevTeam tracking.Team
	newTeam  tracking.Team
}

//transitions walks the possession record and reports every change between two valid holders.
//The previous holder survives frames nobody holds the ball, so a loose ball followed by a catch is still a transition.
func transitions(possession []tracking.TrackID, teams []tracking.TeamAssignment) []transition {
	res := make([]transition, 0)
	prevHolder := tracking.NoTrack
	prevFrame := -1

	for frame := 1; frame < len(possession); frame++ {
		if possession[frame-1].Valid() {
			prevHolder = possession[frame-1]
			prevFrame = frame - 1
		}

		current := possession[frame]
		if !prevHolder.Valid() || !current.Valid() || prevHolder == current {
			continue
		}

		res = append(res, transition{
			frame:    frame,
			prevTeam: teamAt(teams, prevFrame, prevHolder),
			newTeam:  teamAt(teams, frame, current),
		})
	}

	return res
}

func teamAt(teams []tracking.TeamAssignment, frame int, id tracking.TrackID) tracking.Team {
	if frame < 0 || frame >= len(teams) {
		return tracking.NoTeam
	}
	return teams[frame].TeamOf(id)
}

func noTeams(n int) []tracking.Team {
	res := make([]tracking.Team, n)
	for i := range res {
		res[i] = tracking.NoTeam
	}
	return res
}

//DetectPasses returns the passing team on every frame a pass completes, tracking.NoTeam elsewhere
func (d *Detector) DetectPasses(possession []tracking.TrackID, teams []tracking.TeamAssignment) []tracking.Team {
	passes := noTeams(len(possession))

	for _, t := range transitions(possession, teams) {
		if t.prevTeam.Valid() && t.prevTeam == t.newTeam {
			passes[t.frame] = t.prevTeam
		}
	}

	return passes
}

//DetectInterceptions returns the intercepting (new holder's) team on every frame an interception happens, tracking.NoTeam elsewhere.
//Possession changes within ShotWindow frames after a shot attempt are rebounds and are ignored.
func (d *Detector) DetectInterceptions(possession []tracking.TrackID, teams []tracking.TeamAssignment, shotAttempts []bool) []tracking.Team {
	interceptions := noTeams(len(possession))

	for _, t := range transitions(possession, teams) {
		if !t.prevTeam.Valid() || !t.newTeam.Valid() || t.prevTeam == t.newTeam {
			continue
		}

		if utils.AnyInRange(shotAttempts, t.frame-d.cfg.ShotWindow, t.frame) {
			continue
		}

		interceptions[t.frame] = t.newTeam
	}

	return interceptions
}
