//Package shot detects shot attempts from the ball trajectory relative to the hoop
package shot

import (
	"fmt"

	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
)

type Config struct {
	//TrajectoryFrames is the number of recent frames the trajectory is computed from
	TrajectoryFrames int
	//MinTrajectoryPoints is the minimum number of detected ball positions inside the trajectory window
	MinTrajectoryPoints int
	//MinVectorLength ignores near static balls, trajectories shorter than this are never shots
	MinVectorLength float64
	//ProjectionFactor is how many trajectory vectors past the newest point the projected point lies
	ProjectionFactor float64
}

func DefaultConfig() Config {
	return Config{
		TrajectoryFrames:    5,
		MinTrajectoryPoints: 3,
		MinVectorLength:     2,
		ProjectionFactor:    5,
	}
}

//Validate rejects settings under which a trajectory can not be formed
func (c Config) Validate() error {
	if c.TrajectoryFrames < 1 {
		return fmt.Errorf("shot.trajectory_frames must be positive, got %d", c.TrajectoryFrames)
	}
	if c.MinTrajectoryPoints < 2 {
		return fmt.Errorf("shot.min_trajectory_points must be at least 2, got %d", c.MinTrajectoryPoints)
	}
	if c.MinVectorLength <= 0 {
		return fmt.Errorf("shot.min_vector_length must be positive, got %v", c.MinVectorLength)
	}
	return nil
}

type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

//aimedAtHoop is an approximation of a segment/box intersection: it only checks whether either end of the projected segment lies inside the hoop
func aimedAtHoop(from, projected tracking.Point, hoop tracking.Box) bool {
	return hoop.ContainsStrict(from) || hoop.ContainsStrict(projected)
}

//trajectory returns the oldest and newest detected ball centers inside the window, false when there are not enough of them
func (d *Detector) trajectory(window []*tracking.Point) (start, end tracking.Point, ok bool) {
	present := 0
	for _, p := range window {
		if p == nil {
			continue
		}
		if present == 0 {
			start = *p
		}
		end = *p
		present++
	}

	return start, end, present >= d.cfg.MinTrajectoryPoints
}

//Detect returns, for every frame, the id of the player who shot on it or tracking.NoTrack.
//The shot is attributed to whoever held the ball on the previous frame since the ball is already airborne on the shot frame.
func (d *Detector) Detect(balls []tracking.FrameTracks, possession []tracking.TrackID, hoops []*tracking.Box) []tracking.TrackID {
	shots := tracking.NoPossession(len(balls))
	centers := tracking.BallCenters(balls)

	for frame := range balls {
		if frame >= len(hoops) || frame >= len(possession) {
			continue
		}

		hoop := hoops[frame]
		//frame 0 has no previous holder to attribute a shot to
		if centers[frame] == nil || hoop == nil || frame < d.cfg.TrajectoryFrames || frame == 0 {
			continue
		}

		start, end, ok := d.trajectory(utils.Window(centers, frame, d.cfg.TrajectoryFrames))
		if !ok {
			continue
		}

		movingUp := end.Y < start.Y

		direction := end.Sub(start)
		if direction.Norm() < d.cfg.MinVectorLength {
			continue
		}

		projected := end.Add(direction.Scale(d.cfg.ProjectionFactor))

		if movingUp && aimedAtHoop(end, projected, *hoop) {
			if shooter := possession[frame-1]; shooter.Valid() {
				shots[frame] = shooter
			}
		}
	}

	return shots
}

//Attempts turns a shooters array into per-frame shot attempt flags
func Attempts(shots []tracking.TrackID) []bool {
	res := make([]bool, len(shots))
	for i, s := range shots {
		res[i] = s.Valid()
	}
	return res
}
