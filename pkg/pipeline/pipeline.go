//Package pipeline runs all detectors over one video's tracking data and collects their events
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/chenBenjamin97/hoopevents/pkg/events"
	"github.com/chenBenjamin97/hoopevents/pkg/passes"
	"github.com/chenBenjamin97/hoopevents/pkg/possession"
	"github.com/chenBenjamin97/hoopevents/pkg/shot"
	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
	"github.com/chenBenjamin97/hoopevents/pkg/violation"
	"github.com/cyclopcam/logs"
)

//Config gathers the settings of every detector plus run options
type Config struct {
	Possession possession.Config
	Violation  violation.Config
	Shot       shot.Config
	Passes     passes.Config

	//MaxFrames bounds the work of a run by analyzing only the first MaxFrames frames, 0 means all frames
	MaxFrames int
	//ReadFromStub reuses the cached possession record when it matches the number of frames
	ReadFromStub bool
}

func DefaultConfig() Config {
	return Config{
		Possession: possession.DefaultConfig(),
		Violation:  violation.DefaultConfig(),
		Shot:       shot.DefaultConfig(),
		Passes:     passes.DefaultConfig(),
	}
}

//ErrInvalidConfig is returned by Analyze when the detector settings can not produce a meaningful run
var ErrInvalidConfig = errors.New("invalid detector settings")

//Validate checks the settings of every detector
func (c Config) Validate() error {
	for _, check := range []func() error{c.Possession.Validate, c.Violation.Validate, c.Shot.Validate, c.Passes.Validate} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if c.MaxFrames < 0 {
		return fmt.Errorf("%w: analysis.max_frames must not be negative, got %d", ErrInvalidConfig, c.MaxFrames)
	}

	return nil
}

//Cache is the "read/write prior result" capability, see stub.Store
type Cache interface {
	Read(name string, v interface{}) (bool, error)
	Save(name string, v interface{}) error
}

//Result holds every per-frame array a run produced, plus the collected events
type Result struct {
	Possession     []tracking.TrackID
	Travels        []int
	DoubleDribbles []int
	Shots          []tracking.TrackID
	Passes         []tracking.Team
	Interceptions  []tracking.Team
	Events         *events.Collector
}

//Run is a single analysis run over one video. It owns all per-run state, nothing is shared between runs
type Run struct {
	log   logs.Log
	cfg   Config
	cache Cache
}

//NewRun creates a run. cache may be nil, in which case nothing is cached
func NewRun(log logs.Log, cfg Config, cache Cache) *Run {
	return &Run{log: log, cfg: cfg, cache: cache}
}

//Analyze validates the settings and the input and runs possession -> violations, shots -> passes, interceptions -> events.
//A run either completes over the whole (possibly truncated) frame range or fails as a whole. The caller's input is not modified.
func (r *Run) Analyze(original *tracking.Input) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}

	if err := original.Validate(); err != nil {
		return nil, fmt.Errorf("Analyze: Invalid input: %w", err)
	}

	truncated := *original
	in := &truncated
	in.Truncate(r.cfg.MaxFrames)
	numFrames := in.NumFrames()
	start := time.Now()
	r.log.Infof("Analyzing %d frames at %.2f fps", numFrames, in.FPS)

	res := &Result{}
	res.Possession = r.possession(in)

	violations := violation.NewDetector(r.cfg.Violation, in.FPS)
	res.Travels, res.DoubleDribbles = violations.Detect(in.PlayerTracks, in.BallTracks, res.Possession)

	res.Shots = shot.NewDetector(r.cfg.Shot).Detect(in.BallTracks, res.Possession, in.HoopPositions)

	passDetector := passes.NewDetector(r.cfg.Passes)
	res.Passes = passDetector.DetectPasses(res.Possession, in.TeamAssignment)
	res.Interceptions = passDetector.DetectInterceptions(res.Possession, in.TeamAssignment, shot.Attempts(res.Shots))

	res.Events = events.NewCollector(in.FPS)
	res.Events.CollectViolations(res.Travels, res.DoubleDribbles)
	res.Events.CollectPasses(res.Passes)
	res.Events.CollectInterceptions(res.Interceptions)
	res.Events.CollectShots(res.Shots)
	res.Events.SetVideoDuration(in.Duration())

	summary := res.Events.SummaryStats()
	r.log.Infof("Analysis done in %v: %d events (%d travels, %d double dribbles, %d passes, %d interceptions, %d shots)",
		time.Since(start).Round(time.Millisecond), summary.TotalEvents,
		summary.EventCounts[events.Travel], summary.EventCounts[events.DoubleDribble], summary.EventCounts[events.Pass],
		summary.EventCounts[events.Interception], summary.EventCounts[events.Shot])

	return res, nil
}

//possessionStubName keys the possession stub on the analyzed tracking data, so runs over different videos never share it
func possessionStubName(in *tracking.Input) (string, error) {
	fingerprint, err := in.Fingerprint()
	if err != nil {
		return "", err
	}
	return utils.PossessionStubName + "_" + fingerprint[:utils.StubKeyLength], nil
}

//fitsInput is true when the record covers every frame and every holder has both a bbox and a detected ball on its frame
func fitsInput(record []tracking.TrackID, in *tracking.Input) bool {
	if len(record) != in.NumFrames() {
		return false
	}

	for frame, holder := range record {
		if !holder.Valid() {
			continue
		}
		if _, ok := in.PlayerTracks[frame].Box(holder); !ok {
			return false
		}
		if _, ok := in.BallTracks[frame].Ball(); !ok {
			return false
		}
	}

	return true
}

//possession detects ball possession, or reuses a cached record of the same input
func (r *Run) possession(in *tracking.Input) []tracking.TrackID {
	stubName := ""
	if r.cache != nil {
		var err error
		if stubName, err = possessionStubName(in); err != nil {
			r.log.Warnf("Analyze: Not caching possession, got '%v'", err)
		}
	}

	if stubName != "" && r.cfg.ReadFromStub {
		var cached []tracking.TrackID
		if ok, err := r.cache.Read(stubName, &cached); err != nil {
			r.log.Warnf("Analyze: Could not read possession stub, got '%v'", err)
		} else if ok && fitsInput(cached, in) {
			r.log.Infof("Using cached possession for %d frames", in.NumFrames())
			return cached
		} else if ok {
			r.log.Warnf("Analyze: Possession stub '%s' does not match the input, recomputing", stubName)
		}
	}

	res := possession.NewDetector(r.cfg.Possession).Detect(in.PlayerTracks, in.BallTracks)

	if stubName != "" {
		if err := r.cache.Save(stubName, res); err != nil {
			r.log.Warnf("Analyze: Could not save possession stub, got '%v'", err)
		}
	}

	return res
}
