package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/chenBenjamin97/hoopevents/pkg/events"
	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

//handoff is 10 frames of two teammates standing still, player 1 holds the ball on frames 0-4 and player 2 on frames 5-9
func handoff() *tracking.Input {
	in := &tracking.Input{FPS: 30}
	for f := 0; f < 10; f++ {
		in.PlayerTracks = append(in.PlayerTracks, tracking.FrameTracks{
			1: {BBox: &tracking.Box{X1: 90, Y1: 90, X2: 130, Y2: 200}},
			2: {BBox: &tracking.Box{X1: 400, Y1: 90, X2: 440, Y2: 200}},
		})

		ball := &tracking.Box{X1: 100, Y1: 100, X2: 110, Y2: 110}
		if f >= 5 {
			ball = &tracking.Box{X1: 405, Y1: 100, X2: 415, Y2: 110}
		}
		in.BallTracks = append(in.BallTracks, tracking.FrameTracks{utils.BallTrackID: {BBox: ball}})

		in.HoopPositions = append(in.HoopPositions, nil)
		in.TeamAssignment = append(in.TeamAssignment, tracking.TeamAssignment{1: tracking.Team1, 2: tracking.Team1})
	}
	return in
}

//memCache keeps stubs as JSON in memory
type memCache struct {
	stubs map[string][]byte
	saves int
}

func newMemCache() *memCache {
	return &memCache{stubs: make(map[string][]byte)}
}

func (c *memCache) Read(name string, v interface{}) (bool, error) {
	data, ok := c.stubs[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (c *memCache) Save(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.stubs[name] = data
	c.saves++
	return nil
}

func TestAnalyze(t *testing.T) {
	res, err := NewRun(logs.NewTestingLog(t), DefaultConfig(), nil).Analyze(handoff())
	require.NoError(t, err)

	require.Equal(t, []tracking.TrackID{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}, res.Possession)
	require.Equal(t, make([]int, 10), res.Travels)
	require.Equal(t, make([]int, 10), res.DoubleDribbles)
	require.Equal(t, tracking.NoPossession(10), res.Shots)

	evs := res.Events.Events()
	require.Len(t, evs, 1)
	require.Equal(t, events.Pass, evs[0].Type)
	require.Equal(t, 5, evs[0].Frame)
	require.Equal(t, tracking.Team1, *evs[0].Team)
	require.InDelta(t, 5.0/30, evs[0].Timestamp, 1e-9)

	a := res.Events.Export()
	require.InDelta(t, 10.0/30, a.Metadata.VideoDuration, 1e-9)
	require.Equal(t, 30.0, a.Metadata.FPS)
}

func TestAnalyzeOtherTeamIntercepts(t *testing.T) {
	in := handoff()
	for _, ta := range in.TeamAssignment {
		ta[2] = tracking.Team2
	}

	res, err := NewRun(logs.NewTestingLog(t), DefaultConfig(), nil).Analyze(in)
	require.NoError(t, err)

	require.Empty(t, res.Events.EventsByType(events.Pass))
	interceptions := res.Events.EventsByType(events.Interception)
	require.Len(t, interceptions, 1)
	require.Equal(t, 5, interceptions[0].Frame)
	require.Equal(t, tracking.Team2, *interceptions[0].Team)
}

func TestAnalyzeMaxFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrames = 5

	res, err := NewRun(logs.NewTestingLog(t), cfg, nil).Analyze(handoff())
	require.NoError(t, err)
	require.Len(t, res.Possession, 5)
	require.Len(t, res.Interceptions, 5)
	require.Equal(t, 0, res.Events.Len(), "the handoff is past the analyzed frames")
}

func TestAnalyzeRejectsMismatchedInput(t *testing.T) {
	in := handoff()
	in.TeamAssignment = in.TeamAssignment[:9]

	_, err := NewRun(logs.NewTestingLog(t), DefaultConfig(), nil).Analyze(in)
	require.Error(t, err)
	require.True(t, errors.Is(err, tracking.ErrLengthMismatch))

	in = handoff()
	in.FPS = 0
	_, err = NewRun(logs.NewTestingLog(t), DefaultConfig(), nil).Analyze(in)
	require.ErrorIs(t, err, tracking.ErrInvalidFPS)
}

func stubName(t *testing.T, in *tracking.Input) string {
	name, err := possessionStubName(in)
	require.NoError(t, err)
	return name
}

func TestAnalyzeUsesPossessionStub(t *testing.T) {
	cache := newMemCache()
	cfg := DefaultConfig()
	name := stubName(t, handoff())

	//without ReadFromStub the stub is only written
	_, err := NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(handoff())
	require.NoError(t, err)
	require.Equal(t, 1, cache.saves)
	require.Contains(t, cache.stubs, name)

	//a cached record of the same input replaces detection
	require.NoError(t, cache.Save(name, tracking.NoPossession(10)))
	cfg.ReadFromStub = true
	res, err := NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(handoff())
	require.NoError(t, err)
	require.Equal(t, tracking.NoPossession(10), res.Possession)
	require.Equal(t, 0, res.Events.Len())

	//a record of another length is ignored and overwritten
	require.NoError(t, cache.Save(name, tracking.NoPossession(3)))
	res, err = NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(handoff())
	require.NoError(t, err)
	require.Equal(t, []tracking.TrackID{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}, res.Possession)

	var saved []tracking.TrackID
	ok, err := cache.Read(name, &saved)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, res.Possession, saved)
}

func TestPossessionStubIsPerInput(t *testing.T) {
	cache := newMemCache()
	cfg := DefaultConfig()
	cfg.ReadFromStub = true

	_, err := NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(handoff())
	require.NoError(t, err)

	//same players and frame count, but the ball is never detected
	blind := handoff()
	for f := range blind.BallTracks {
		blind.BallTracks[f] = tracking.FrameTracks{utils.BallTrackID: {}}
	}
	require.NotEqual(t, stubName(t, handoff()), stubName(t, blind))

	res, err := NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(blind)
	require.NoError(t, err)
	require.Equal(t, tracking.NoPossession(10), res.Possession)
	require.Equal(t, 0, res.Events.Len())
	require.Len(t, cache.stubs, 2)
}

func TestPossessionStubMustFitInput(t *testing.T) {
	cache := newMemCache()
	cfg := DefaultConfig()
	cfg.ReadFromStub = true

	in := handoff()
	in.BallTracks[7] = tracking.FrameTracks{utils.BallTrackID: {}}
	name := stubName(t, in)

	//holder on a frame without a ball
	stale := []tracking.TrackID{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}
	require.NoError(t, cache.Save(name, stale))
	res, err := NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(in)
	require.NoError(t, err)
	require.Equal(t, tracking.NoTrack, res.Possession[7])

	//holder without a bbox on its frame
	require.NoError(t, cache.Save(name, []tracking.TrackID{1, 1, 1, 1, 1, 3, 3, 3, 3, -1}))
	res, err = NewRun(logs.NewTestingLog(t), cfg, cache).Analyze(in)
	require.NoError(t, err)
	require.Equal(t, []tracking.TrackID{1, 1, 1, 1, 1, 2, 2, -1, 2, 2}, res.Possession)
}

func TestAnalyzeKeepsCallerInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrames = 3

	in := handoff()
	res, err := NewRun(logs.NewTestingLog(t), cfg, nil).Analyze(in)
	require.NoError(t, err)
	require.Len(t, res.Possession, 3)
	require.Equal(t, 10, in.NumFrames())
	require.Len(t, in.BallTracks, 10)
	require.Len(t, in.TeamAssignment, 10)
}

func TestAnalyzeRejectsInvalidConfig(t *testing.T) {
	for name, change := range map[string]func(*Config){
		"no trajectory":         func(c *Config) { c.Shot.TrajectoryFrames = 0 },
		"no trajectory points":  func(c *Config) { c.Shot.MinTrajectoryPoints = 0 },
		"no vector length":      func(c *Config) { c.Shot.MinVectorLength = 0 },
		"negative shot window":  func(c *Config) { c.Passes.ShotWindow = -1 },
		"no hold duration":      func(c *Config) { c.Violation.HoldDurationSeconds = 0 },
		"negative threshold":    func(c *Config) { c.Possession.PossessionThreshold = -1 },
		"negative frames limit": func(c *Config) { c.MaxFrames = -5 },
	} {
		cfg := DefaultConfig()
		change(&cfg)

		_, err := NewRun(logs.NewTestingLog(t), cfg, nil).Analyze(handoff())
		require.ErrorIs(t, err, ErrInvalidConfig, name)
	}

	require.NoError(t, DefaultConfig().Validate())
}
