//Package events turns the per-frame outputs of the detectors into a sorted, timestamped event log and exports it
package events

import (
	"fmt"
	"sort"

	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
)

//Collector gathers events of a single video. It is not safe for concurrent use
type Collector struct {
	fps           float64
	videoDuration float64
	events        []Event
}

func NewCollector(fps float64) *Collector {
	return &Collector{
		fps:    fps,
		events: make([]Event, 0),
	}
}

func (c *Collector) frameToTimestamp(frame int) float64 {
	return float64(frame) / c.fps
}

//SetVideoDuration sets the video duration (seconds) reported in exports
func (c *Collector) SetVideoDuration(seconds float64) {
	c.videoDuration = seconds
}

//CollectViolations adds an event on every frame a cumulative violation counter increases
func (c *Collector) CollectViolations(travels, doubleDribbles []int) {
	prevTravels, prevDoubleDribbles := 0, 0

	for frame := 0; frame < len(travels) && frame < len(doubleDribbles); frame++ {
		if travels[frame] > prevTravels {
			c.events = append(c.events, newViolation(Travel, frame, c.frameToTimestamp(frame)))
			prevTravels = travels[frame]
		}

		if doubleDribbles[frame] > prevDoubleDribbles {
			c.events = append(c.events, newViolation(DoubleDribble, frame, c.frameToTimestamp(frame)))
			prevDoubleDribbles = doubleDribbles[frame]
		}
	}
}

func (c *Collector) collectTeamEvents(t Type, teams []tracking.Team) {
	for frame, team := range teams {
		if team.Valid() {
			c.events = append(c.events, newTeamEvent(t, frame, c.frameToTimestamp(frame), team))
		}
	}
}

//CollectPasses adds a pass event for every frame with a passing team
func (c *Collector) CollectPasses(passes []tracking.Team) {
	c.collectTeamEvents(Pass, passes)
}

//CollectInterceptions adds an interception event for every frame with an intercepting team
func (c *Collector) CollectInterceptions(interceptions []tracking.Team) {
	c.collectTeamEvents(Interception, interceptions)
}

//CollectShots adds a shot event for every frame with a shooter
func (c *Collector) CollectShots(shooters []tracking.TrackID) {
	for frame, player := range shooters {
		if player.Valid() {
			c.events = append(c.events, newShot(frame, c.frameToTimestamp(frame), player))
		}
	}
}

//Events returns a copy of all events sorted by timestamp. Events with equal timestamps keep the order they were collected in
func (c *Collector) Events() []Event {
	res := make([]Event, len(c.events))
	copy(res, c.events)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp < res[j].Timestamp
	})
	return res
}

//EventsByType returns the events of given type, sorted like Events
func (c *Collector) EventsByType(t Type) []Event {
	res := make([]Event, 0)
	for _, e := range c.Events() {
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}

//Len returns the number of collected events
func (c *Collector) Len() int {
	return len(c.events)
}

//Summary holds event counters, overall and per team
type Summary struct {
	TotalEvents int                     `json:"total_events"`
	EventCounts map[Type]int            `json:"event_counts"`
	TeamStats   map[string]map[Type]int `json:"team_stats"`
}

func teamKey(t tracking.Team) string {
	return fmt.Sprintf("team_%d", t)
}

//SummaryStats counts events by type, and by type per team for events carrying a team
func (c *Collector) SummaryStats() Summary {
	s := Summary{
		TotalEvents: len(c.events),
		EventCounts: make(map[Type]int),
		TeamStats: map[string]map[Type]int{
			teamKey(tracking.Team1): {},
			teamKey(tracking.Team2): {},
		},
	}

	for _, e := range c.events {
		s.EventCounts[e.Type]++

		if e.Team == nil {
			continue
		}

		key := teamKey(*e.Team)
		if _, ok := s.TeamStats[key]; !ok {
			s.TeamStats[key] = make(map[Type]int)
		}
		s.TeamStats[key][e.Type]++
	}

	return s
}
