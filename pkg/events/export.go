package events

import (
	"encoding/json"
	"fmt"
	"io"
)

type Metadata struct {
	FPS           float64 `json:"fps"`
	TotalEvents   int     `json:"total_events"`
	VideoDuration float64 `json:"video_duration"`
}

//Aggregate is the record handed to the storage/serving collaborator
type Aggregate struct {
	Events   []Event  `json:"events"`
	Summary  Summary  `json:"summary"`
	Metadata Metadata `json:"metadata"`
}

//ByType partitions events for the rendering collaborator
type ByType struct {
	Travels        []Event `json:"travels"`
	DoubleDribbles []Event `json:"double_dribbles"`
	Passes         []Event `json:"passes"`
	Interceptions  []Event `json:"interceptions"`
	Shots          []Event `json:"shots"`
}

type FrontendExport struct {
	Events       []Event  `json:"events"`
	Summary      Summary  `json:"summary"`
	EventsByType ByType   `json:"eventsByType"`
	Metadata     Metadata `json:"metadata"`
}

func (c *Collector) metadata() Metadata {
	return Metadata{
		FPS:           c.fps,
		TotalEvents:   len(c.events),
		VideoDuration: c.videoDuration,
	}
}

//Export builds the aggregate record of all collected events
func (c *Collector) Export() *Aggregate {
	return &Aggregate{
		Events:   c.Events(),
		Summary:  c.SummaryStats(),
		Metadata: c.metadata(),
	}
}

//ExportForFrontend builds the aggregate record plus the events partitioned by type
func (c *Collector) ExportForFrontend() *FrontendExport {
	return &FrontendExport{
		Events:  c.Events(),
		Summary: c.SummaryStats(),
		EventsByType: ByType{
			Travels:        c.EventsByType(Travel),
			DoubleDribbles: c.EventsByType(DoubleDribble),
			Passes:         c.EventsByType(Pass),
			Interceptions:  c.EventsByType(Interception),
			Shots:          c.EventsByType(Shot),
		},
		Metadata: c.metadata(),
	}
}

//ExportJSON writes the aggregate record as indented JSON to w
func (c *Collector) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Export()); err != nil {
		return fmt.Errorf("ExportJSON: Could not write events, got '%w'", err)
	}

	return nil
}

//ReadAggregate decodes an aggregate record previously written by ExportJSON
func ReadAggregate(r io.Reader) (*Aggregate, error) {
	a := &Aggregate{}
	if err := json.NewDecoder(r).Decode(a); err != nil {
		return nil, fmt.Errorf("ReadAggregate: Could not decode events, got '%w'", err)
	}

	return a, nil
}

//Filter returns the aggregate events of given type
func (a *Aggregate) Filter(t Type) []Event {
	res := make([]Event, 0)
	for _, e := range a.Events {
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}
