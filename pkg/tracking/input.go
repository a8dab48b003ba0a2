package tracking

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	//ErrLengthMismatch is returned when per-frame arrays do not all have the same number of frames
	ErrLengthMismatch = errors.New("per-frame arrays have different lengths")
	//ErrInvalidFPS is returned when fps is not a positive number
	ErrInvalidFPS = errors.New("fps must be positive")
	//ErrMalformedBox is returned when a bounding box is neither empty nor 4 numbers
	ErrMalformedBox = errors.New("bounding box must have 0 or 4 coordinates")
	//ErrInvalidTeam is returned when a team assignment is neither team 1 nor team 2
	ErrInvalidTeam = errors.New("team must be 1 or 2")
)

//Input is everything a single analysis run consumes. All slices are indexed by frame number and must have the same length
type Input struct {
	PlayerTracks   []FrameTracks
	BallTracks     []FrameTracks
	HoopPositions  []*Box
	TeamAssignment []TeamAssignment
	FPS            float64
}

//NumFrames returns the number of frames of this run (F)
func (in *Input) NumFrames() int {
	return len(in.PlayerTracks)
}

//Validate rejects inputs whose frame index domains are not aligned, the pipeline never truncates them silently
func (in *Input) Validate() error {
	if in.FPS <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidFPS, in.FPS)
	}

	n := in.NumFrames()
	lengths := map[string]int{
		"ball_tracks":     len(in.BallTracks),
		"hoop_positions":  len(in.HoopPositions),
		"team_assignment": len(in.TeamAssignment),
	}
	for _, name := range []string{"ball_tracks", "hoop_positions", "team_assignment"} {
		if lengths[name] != n {
			return fmt.Errorf("%w: player_tracks has %d frames, %s has %d", ErrLengthMismatch, n, name, lengths[name])
		}
	}

	return nil
}

//Truncate keeps only the first maxFrames frames. maxFrames <= 0 means no limit
func (in *Input) Truncate(maxFrames int) {
	if maxFrames <= 0 {
		return
	}

	cut := func(n int) int {
		if n > maxFrames {
			return maxFrames
		}
		return n
	}

	in.PlayerTracks = in.PlayerTracks[:cut(len(in.PlayerTracks))]
	in.BallTracks = in.BallTracks[:cut(len(in.BallTracks))]
	in.HoopPositions = in.HoopPositions[:cut(len(in.HoopPositions))]
	in.TeamAssignment = in.TeamAssignment[:cut(len(in.TeamAssignment))]
}

//Duration returns the video duration in seconds covered by the frames of this run
func (in *Input) Duration() float64 {
	if in.FPS <= 0 {
		return 0
	}
	return float64(in.NumFrames()) / in.FPS
}

//BallCenters returns the ball center for every frame, nil where the ball was not detected.
//Detectors read their history windows out of this fully populated array.
func BallCenters(balls []FrameTracks) []*Point {
	centers := make([]*Point, len(balls))
	for i, frame := range balls {
		if box, ok := frame.Ball(); ok {
			c := box.Center()
			centers[i] = &c
		}
	}

	return centers
}

//wire format, as produced by the tracking collaborator:
//{"player_tracks":[{"3":{"bbox":[x1,y1,x2,y2]}}], "ball_tracks":[{"1":{"bbox":[]}}], "hoop_positions":[[...] | null], "team_assignment":[{"3":1}], "fps":30}
type wireTrack struct {
	BBox []float64 `json:"bbox"`
}

type wireInput struct {
	PlayerTracks   []map[TrackID]wireTrack `json:"player_tracks"`
	BallTracks     []map[TrackID]wireTrack `json:"ball_tracks"`
	HoopPositions  [][]float64             `json:"hoop_positions"`
	TeamAssignment []map[TrackID]Team      `json:"team_assignment"`
	FPS            float64                 `json:"fps"`
}

func boxFromSlice(s []float64) (*Box, error) {
	switch len(s) {
	case 0:
		return nil, nil
	case 4:
		return &Box{X1: s[0], Y1: s[1], X2: s[2], Y2: s[3]}, nil
	default:
		return nil, fmt.Errorf("%w, got %v", ErrMalformedBox, s)
	}
}

func framesFromWire(name string, frames []map[TrackID]wireTrack) ([]FrameTracks, error) {
	res := make([]FrameTracks, len(frames))
	for i, frame := range frames {
		res[i] = make(FrameTracks, len(frame))
		for id, t := range frame {
			box, err := boxFromSlice(t.BBox)
			if err != nil {
				return nil, fmt.Errorf("%s frame %d track %d: %w", name, i, id, err)
			}
			res[i][id] = Track{BBox: box}
		}
	}

	return res, nil
}

func framesToWire(frames []FrameTracks) []map[TrackID]wireTrack {
	res := make([]map[TrackID]wireTrack, len(frames))
	for i, frame := range frames {
		res[i] = make(map[TrackID]wireTrack, len(frame))
		for id, t := range frame {
			wt := wireTrack{BBox: []float64{}}
			if t.BBox != nil {
				wt.BBox = t.BBox.slice()
			}
			res[i][id] = wt
		}
	}

	return res
}

func (in *Input) UnmarshalJSON(data []byte) error {
	var w wireInput
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	players, err := framesFromWire("player_tracks", w.PlayerTracks)
	if err != nil {
		return err
	}

	balls, err := framesFromWire("ball_tracks", w.BallTracks)
	if err != nil {
		return err
	}

	hoops := make([]*Box, len(w.HoopPositions))
	for i, h := range w.HoopPositions {
		if hoops[i], err = boxFromSlice(h); err != nil {
			return fmt.Errorf("hoop_positions frame %d: %w", i, err)
		}
	}

	teams := make([]TeamAssignment, len(w.TeamAssignment))
	for i, a := range w.TeamAssignment {
		teams[i] = TeamAssignment(a)
		if teams[i] == nil {
			teams[i] = TeamAssignment{}
		}
		for id, team := range a {
			if team != Team1 && team != Team2 {
				return fmt.Errorf("team_assignment frame %d track %d: %w, got %d", i, id, ErrInvalidTeam, team)
			}
		}
	}

	*in = Input{
		PlayerTracks:   players,
		BallTracks:     balls,
		HoopPositions:  hoops,
		TeamAssignment: teams,
		FPS:            w.FPS,
	}

	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	hoops := make([][]float64, len(in.HoopPositions))
	for i, h := range in.HoopPositions {
		if h != nil {
			hoops[i] = h.slice()
		}
	}

	teams := make([]map[TrackID]Team, len(in.TeamAssignment))
	for i, a := range in.TeamAssignment {
		teams[i] = a
	}

	return json.Marshal(wireInput{
		PlayerTracks:   framesToWire(in.PlayerTracks),
		BallTracks:     framesToWire(in.BallTracks),
		HoopPositions:  hoops,
		TeamAssignment: teams,
		FPS:            in.FPS,
	})
}

//Fingerprint returns a hex digest of the wire form of this input. Equal tracking data always gives the same fingerprint
func (in *Input) Fingerprint() (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: Could not encode input, got '%w'", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

//ReadInput decodes a tracking collaborator's JSON document from r. It does not validate frame alignment, see Validate
func ReadInput(r io.Reader) (*Input, error) {
	in := &Input{}
	if err := json.NewDecoder(r).Decode(in); err != nil {
		return nil, fmt.Errorf("ReadInput: Could not decode tracking data, got '%w'", err)
	}

	return in, nil
}

//NoPossession returns a possession record of n frames where nobody holds the ball
func NoPossession(n int) []TrackID {
	res := make([]TrackID, n)
	for i := range res {
		res[i] = NoTrack
	}
	return res
}
