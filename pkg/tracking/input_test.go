package tracking

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleInput = `{
	"player_tracks": [{"3": {"bbox": [0, 0, 10, 20]}}, {"3": {"bbox": []}, "4": {"bbox": [5, 5, 15, 25]}}],
	"ball_tracks": [{"1": {"bbox": [2, 2, 4, 4]}}, {"1": {"bbox": []}}],
	"hoop_positions": [[100, 10, 120, 20], null],
	"team_assignment": [{"3": 1}, {"3": 1, "4": 2}],
	"fps": 30
}`

func TestReadInput(t *testing.T) {
	in, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)
	require.NoError(t, in.Validate())
	require.Equal(t, 2, in.NumFrames())
	require.Equal(t, 30.0, in.FPS)

	box, ok := in.PlayerTracks[0].Box(3)
	require.True(t, ok)
	require.Equal(t, Box{X1: 0, Y1: 0, X2: 10, Y2: 20}, box)

	//empty bbox means "not detected", but the track itself is still known
	_, ok = in.PlayerTracks[1].Box(3)
	require.False(t, ok)
	_, ok = in.PlayerTracks[1].Box(4)
	require.True(t, ok)

	_, ok = in.BallTracks[0].Ball()
	require.True(t, ok)
	_, ok = in.BallTracks[1].Ball()
	require.False(t, ok)

	require.NotNil(t, in.HoopPositions[0])
	require.Nil(t, in.HoopPositions[1])

	require.Equal(t, Team1, in.TeamAssignment[1].TeamOf(3))
	require.Equal(t, Team2, in.TeamAssignment[1].TeamOf(4))
	require.Equal(t, NoTeam, in.TeamAssignment[0].TeamOf(4))
}

func TestInputJSONRoundTrip(t *testing.T) {
	in, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)

	data, err := in.MarshalJSON()
	require.NoError(t, err)

	again, err := ReadInput(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, in, again)
}

func TestReadInputMalformedBox(t *testing.T) {
	_, err := ReadInput(strings.NewReader(`{"player_tracks": [{"3": {"bbox": [1, 2, 3]}}], "fps": 30}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedBox))
}

func TestValidate(t *testing.T) {
	in, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)

	in.HoopPositions = in.HoopPositions[:1]
	err = in.Validate()
	require.ErrorIs(t, err, ErrLengthMismatch)
	require.Contains(t, err.Error(), "hoop_positions")

	in, _ = ReadInput(strings.NewReader(sampleInput))
	in.FPS = 0
	require.ErrorIs(t, in.Validate(), ErrInvalidFPS)
}

func TestTruncate(t *testing.T) {
	in, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)

	in.Truncate(0)
	require.Equal(t, 2, in.NumFrames())

	in.Truncate(1)
	require.Equal(t, 1, in.NumFrames())
	require.NoError(t, in.Validate())
	require.InDelta(t, 1.0/30, in.Duration(), 1e-9)

	in.Truncate(5)
	require.Equal(t, 1, in.NumFrames())
}

func TestBallCenters(t *testing.T) {
	in, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)

	centers := BallCenters(in.BallTracks)
	require.Len(t, centers, 2)
	require.Equal(t, &Point{X: 3, Y: 3}, centers[0])
	require.Nil(t, centers[1])
}

func TestBoxGeometry(t *testing.T) {
	b := Box{X1: 10, Y1: 10, X2: 20, Y2: 30}

	require.Equal(t, Point{X: 15, Y: 20}, b.Center())

	require.True(t, b.ContainsStrict(Point{X: 15, Y: 15}))
	require.False(t, b.ContainsStrict(Point{X: 10, Y: 15}), "border is outside")

	require.Equal(t, 0.0, b.DistanceTo(Point{X: 12, Y: 12}))
	require.Equal(t, 5.0, b.DistanceTo(Point{X: 25, Y: 20}))
	require.Equal(t, 5.0, b.DistanceTo(Point{X: 23, Y: 34}))

	require.True(t, b.Overlaps(Box{X1: 19, Y1: 29, X2: 40, Y2: 40}))
	require.False(t, b.Overlaps(Box{X1: 21, Y1: 10, X2: 40, Y2: 40}))

	require.Equal(t, 5.0, Point{X: 3, Y: 4}.Norm())
	require.False(t, NoTrack.Valid())
	require.True(t, TrackID(0).Valid())
}

func TestReadInputInvalidTeam(t *testing.T) {
	for _, team := range []string{"0", "3", "-1"} {
		_, err := ReadInput(strings.NewReader(`{"player_tracks": [{}], "ball_tracks": [{}], "hoop_positions": [null], "team_assignment": [{"3": ` + team + `}], "fps": 30}`))
		require.ErrorIs(t, err, ErrInvalidTeam, team)
		require.Contains(t, err.Error(), "track 3")
	}
}

func TestFingerprint(t *testing.T) {
	a, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)
	b, err := ReadInput(strings.NewReader(sampleInput))
	require.NoError(t, err)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, fa, fb)
	require.Len(t, fa, 64)

	//same number of frames, ball lost on the first frame
	b.BallTracks[0] = FrameTracks{1: {}}
	fb, err = b.Fingerprint()
	require.NoError(t, err)
	require.NotEqual(t, fa, fb)
}
