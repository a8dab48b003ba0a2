package events

import (
	"fmt"

	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
)

//Type is the kind of a basketball event
type Type string

const (
	Travel        Type = "travel"
	DoubleDribble Type = "double_dribble"
	Pass          Type = "pass"
	Interception  Type = "interception"
	Shot          Type = "shot"
)

//Types lists every event type in export order
var Types = []Type{Travel, DoubleDribble, Pass, Interception, Shot}

//TypeNames returns Types as plain strings
func TypeNames() []string {
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return names
}

//Event is a single timestamped basketball event. Team is set for passes and interceptions, PlayerID for shots
type Event struct {
	Type        Type              `json:"type"`
	Timestamp   float64           `json:"timestamp"`
	Frame       int               `json:"frame"`
	Team        *tracking.Team    `json:"team,omitempty"`
	PlayerID    *tracking.TrackID `json:"player_id,omitempty"`
	Description string            `json:"description"`
}

func newViolation(t Type, frame int, timestamp float64) Event {
	desc := "Travel violation"
	if t == DoubleDribble {
		desc = "Double dribble violation"
	}

	return Event{Type: t, Timestamp: timestamp, Frame: frame, Description: desc}
}

func newTeamEvent(t Type, frame int, timestamp float64, team tracking.Team) Event {
	return Event{
		Type:        t,
		Timestamp:   timestamp,
		Frame:       frame,
		Team:        &team,
		Description: fmt.Sprintf("Team %d %s", team, t),
	}
}

func newShot(frame int, timestamp float64, player tracking.TrackID) Event {
	return Event{
		Type:        Shot,
		Timestamp:   timestamp,
		Frame:       frame,
		PlayerID:    &player,
		Description: fmt.Sprintf("Shot by player %d", player),
	}
}
