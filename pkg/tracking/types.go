package tracking

import (
	"math"

	"github.com/chenBenjamin97/hoopevents/pkg/utils"
)

//TrackID is a stable identifier assigned by the upstream tracker to the same object across frames
type TrackID int

//NoTrack marks "nobody" - no possession, no shooter
const NoTrack TrackID = utils.Sentinel

//Valid returns false for the NoTrack sentinel
func (id TrackID) Valid() bool {
	return id != NoTrack
}

//Team is a team label produced by the team classifier
type Team int

const (
	NoTeam Team = utils.Sentinel
	Team1  Team = utils.Team1
	Team2  Team = utils.Team2
)

//Valid returns false for the NoTeam sentinel
func (t Team) Valid() bool {
	return t != NoTeam
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(b Point) Point {
	return Point{X: p.X - b.X, Y: p.Y - b.Y}
}

func (p Point) Add(b Point) Point {
	return Point{X: p.X + b.X, Y: p.Y + b.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

//Norm is the euclidean length of p as a vector
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p Point) Distance(b Point) float64 {
	return p.Sub(b).Norm()
}

//Box is an axis aligned bounding box, (X1,Y1) top-left and (X2,Y2) bottom-right, image coordinates (y grows downwards)
type Box struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

//ContainsStrict returns true if p lies strictly inside the box, points on the border are outside
func (b Box) ContainsStrict(p Point) bool {
	return b.X1 < p.X && p.X < b.X2 && b.Y1 < p.Y && p.Y < b.Y2
}

//Overlaps returns true if both boxes share at least one point
func (b Box) Overlaps(o Box) bool {
	return b.X1 <= o.X2 && o.X1 <= b.X2 && b.Y1 <= o.Y2 && o.Y1 <= b.Y2
}

//DistanceTo returns the distance between p and the closest point of the box, 0 when p is inside it
func (b Box) DistanceTo(p Point) float64 {
	dx := math.Max(math.Max(b.X1-p.X, 0), p.X-b.X2)
	dy := math.Max(math.Max(b.Y1-p.Y, 0), p.Y-b.Y2)
	return math.Hypot(dx, dy)
}

func (b Box) slice() []float64 {
	return []float64{b.X1, b.Y1, b.X2, b.Y2}
}

//Track is a single tracked object in a single frame. BBox is nil when the object was not detected in that frame
type Track struct {
	BBox *Box
}

//FrameTracks are all objects of one kind in one frame, keyed by their track id
type FrameTracks map[TrackID]Track

//Box returns the bounding box of given id in this frame, if it has one
func (f FrameTracks) Box(id TrackID) (Box, bool) {
	t, ok := f[id]
	if !ok || t.BBox == nil {
		return Box{}, false
	}
	return *t.BBox, true
}

//Ball returns the ball bounding box of this frame, if the ball was detected
func (f FrameTracks) Ball() (Box, bool) {
	return f.Box(utils.BallTrackID)
}

//TeamAssignment maps track ids to their team on a single frame. Missing tracks were not classified yet
type TeamAssignment map[TrackID]Team

//TeamOf returns given track team in this frame, or NoTeam if it was not classified
func (a TeamAssignment) TeamOf(id TrackID) Team {
	if t, ok := a[id]; ok {
		return t
	}
	return NoTeam
}
