//Package config registers default settings and loads config.yaml into the global viper instance
package config

import (
	"errors"
	"fmt"

	"github.com/chenBenjamin97/hoopevents/pkg/pipeline"
	"github.com/spf13/viper"
)

//SetDefaults registers a default for every key the program reads
func SetDefaults() {
	d := pipeline.DefaultConfig()

	viper.SetDefault("http.port", "8080")

	viper.SetDefault("directory.root", "./data")
	viper.SetDefault("directory.sessions", "./data/sessions")
	viper.SetDefault("directory.stubs", "./data/stubs")

	viper.SetDefault("possession.possession_threshold", d.Possession.PossessionThreshold)
	viper.SetDefault("possession.continuity_threshold", d.Possession.ContinuityThreshold)

	viper.SetDefault("violation.travel_threshold", d.Violation.TravelThreshold)
	viper.SetDefault("violation.hold_duration_seconds", d.Violation.HoldDurationSeconds)
	viper.SetDefault("violation.hold_stationary_threshold", d.Violation.HoldStationaryThreshold)
	viper.SetDefault("violation.dribble_start_stability_threshold", d.Violation.DribbleStartStabilityThreshold)

	viper.SetDefault("shot.trajectory_frames", d.Shot.TrajectoryFrames)
	viper.SetDefault("shot.min_trajectory_points", d.Shot.MinTrajectoryPoints)
	viper.SetDefault("shot.min_vector_length", d.Shot.MinVectorLength)
	viper.SetDefault("shot.projection_factor", d.Shot.ProjectionFactor)

	viper.SetDefault("interception.shot_window", d.Passes.ShotWindow)

	viper.SetDefault("analysis.max_frames", 0)
	viper.SetDefault("analysis.read_from_stub", false)
}

//Load registers defaults and reads the config file. With an empty path, "config.yaml" is searched in the working directory
//and a missing file is not an error (found == false). An explicitly given file must exist.
func Load(path string) (found bool, err error) {
	SetDefaults()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("config.Load: Could not read config file, got '%w'", err)
	}

	return true, nil
}

//Detection builds the pipeline settings out of the current viper values
func Detection() pipeline.Config {
	cfg := pipeline.DefaultConfig()

	cfg.Possession.PossessionThreshold = viper.GetFloat64("possession.possession_threshold")
	cfg.Possession.ContinuityThreshold = viper.GetFloat64("possession.continuity_threshold")

	cfg.Violation.TravelThreshold = viper.GetFloat64("violation.travel_threshold")
	cfg.Violation.HoldDurationSeconds = viper.GetFloat64("violation.hold_duration_seconds")
	cfg.Violation.HoldStationaryThreshold = viper.GetFloat64("violation.hold_stationary_threshold")
	cfg.Violation.DribbleStartStabilityThreshold = viper.GetFloat64("violation.dribble_start_stability_threshold")

	cfg.Shot.TrajectoryFrames = viper.GetInt("shot.trajectory_frames")
	cfg.Shot.MinTrajectoryPoints = viper.GetInt("shot.min_trajectory_points")
	cfg.Shot.MinVectorLength = viper.GetFloat64("shot.min_vector_length")
	cfg.Shot.ProjectionFactor = viper.GetFloat64("shot.projection_factor")

	cfg.Passes.ShotWindow = viper.GetInt("interception.shot_window")

	cfg.MaxFrames = viper.GetInt("analysis.max_frames")
	cfg.ReadFromStub = viper.GetBool("analysis.read_from_stub")

	return cfg
}
