// Package model contains domain models passed between layers.
package model

import "time"

// Fixture lifecycle status codes as reported by the ingestion pipeline.
const (
	StatusNotStarted = "NS"
	StatusFirstHalf  = "1H"
	StatusHalfTime   = "HT"
	StatusSecondHalf = "2H"
	StatusFullTime   = "FT"
)

// RankedVideo references a clip stored in the object store. Rank 1 is the
// best candidate for a goal. Records are immutable once written by the
// clip-discovery pipeline.
type RankedVideo struct {
	Bucket     string `bson:"bucket" json:"bucket"`
	Path       string `bson:"path" json:"path"`
	URL        string `bson:"url,omitempty" json:"url,omitempty"`
	Hash       string `bson:"phash" json:"phash"`
	Resolution int    `bson:"resolution_score" json:"resolutionScore"`
	Popularity int    `bson:"popularity" json:"popularity"`
	Rank       int    `bson:"rank" json:"rank"`
}

// GoalEvent is one entry in a fixture's event list. The completion flags are
// mutated by the background clip-discovery pipeline; this service only
// observes and republishes them.
type GoalEvent struct {
	Scorer           string        `bson:"scorer" json:"scorer"`
	Assist           string        `bson:"assist,omitempty" json:"assist,omitempty"`
	Minute           int           `bson:"minute" json:"minute"`
	ScoreBefore      string        `bson:"score_before" json:"scoreBefore"`
	ScoreAfter       string        `bson:"score_after" json:"scoreAfter"`
	Videos           []RankedVideo `bson:"videos,omitempty" json:"videos,omitempty"`
	MonitorComplete  bool          `bson:"_monitor_complete" json:"monitorComplete"`
	DownloadComplete bool          `bson:"_download_complete" json:"downloadComplete"`
}

// Fixture is a single sports match document. A fixture lives in exactly one
// of the staging/active/completed collections depending on lifecycle stage;
// moves between collections are performed by the external ingestion process.
type Fixture struct {
	ID           int64       `bson:"fixture_id" json:"fixtureId"`
	Status       string      `bson:"status" json:"status"`
	HomeTeam     string      `bson:"home_team" json:"homeTeam"`
	AwayTeam     string      `bson:"away_team" json:"awayTeam"`
	League       string      `bson:"league,omitempty" json:"league,omitempty"`
	KickoffTime  time.Time   `bson:"kickoff_time" json:"kickoffTime"`
	LastActivity time.Time   `bson:"last_activity" json:"lastActivity"`
	Events       []GoalEvent `bson:"events,omitempty" json:"events,omitempty"`
}

// FixtureSnapshot groups the three fixture collections as read at one
// instant. The collections are assumed disjoint by fixture id.
type FixtureSnapshot struct {
	Staging   []Fixture `json:"staging"`
	Active    []Fixture `json:"active"`
	Completed []Fixture `json:"completed"`
}
