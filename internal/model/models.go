// Package model defines the documents read from the entity store and the
// result shapes returned by search and recommendation.
package model

import (
	"time"

	"jobboard/geo-service/internal/geo"
)

// EntityKind selects the collection an operation applies to.
type EntityKind string

const (
	KindJob       EntityKind = "job"
	KindCandidate EntityKind = "candidate"
)

// CandidateType is the users.type value that marks a candidate profile.
const CandidateType = "candidato"

// Job mirrors a document of the jobs collection.
type Job struct {
	ID           string    `json:"id" bson:"id"`
	Title        string    `json:"title" bson:"title"`
	Company      string    `json:"company,omitempty" bson:"company,omitempty"`
	Status       string    `json:"status" bson:"status"`
	Category     string    `json:"category,omitempty" bson:"category,omitempty"`
	Type         string    `json:"type,omitempty" bson:"type,omitempty"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty" bson:"longitude,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Requirements string    `json:"requirements,omitempty" bson:"requirements,omitempty"`
	Salary       string    `json:"salary,omitempty" bson:"salary,omitempty"`
}

// User mirrors a document of the users collection. Candidates and the
// recommendation subject are both users.
type User struct {
	ID              string   `json:"id" bson:"id"`
	Name            string   `json:"name" bson:"name"`
	Type            string   `json:"type" bson:"type"`
	Status          string   `json:"status" bson:"status"`
	Skills          []string `json:"skills,omitempty" bson:"skills,omitempty"`
	Interests       []string `json:"interests,omitempty" bson:"interests,omitempty"`
	Experience      string   `json:"experience,omitempty" bson:"experience,omitempty"`
	Bio             string   `json:"bio,omitempty" bson:"bio,omitempty"`
	Rating          float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	Location        string   `json:"location,omitempty" bson:"location,omitempty"`
	Address         string   `json:"address,omitempty" bson:"address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
	ProfilePhotoURL *string  `json:"profilePhotoUrl,omitempty" bson:"profilePhotoUrl,omitempty"`
}

// Coordinates returns the explicit coordinate stored on the job, if any.
func (j *Job) Coordinates() (geo.Coordinate, bool) {
	return explicit(j.Latitude, j.Longitude)
}

// LocationText returns the free-text location used for geocoding.
func (j *Job) LocationText() string {
	if j.Location != "" {
		return j.Location
	}
	return j.Address
}

// Coordinates returns the explicit coordinate stored on the user, if any.
func (u *User) Coordinates() (geo.Coordinate, bool) {
	return explicit(u.Latitude, u.Longitude)
}

// LocationText returns the free-text location used for geocoding.
func (u *User) LocationText() string {
	if u.Location != "" {
		return u.Location
	}
	return u.Address
}

func explicit(lat, lng *float64) (geo.Coordinate, bool) {
	if lat == nil || lng == nil {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{Latitude: *lat, Longitude: *lng}
	return c, c.Valid()
}

// ─── Results ─────────────────────────────────────────────────────────────────

// NearbyJob is a job returned by proximity search.
type NearbyJob struct {
	Job         Job            `json:"job"`
	DistanceKm  float64        `json:"distanceKm"`
	Coordinates geo.Coordinate `json:"coordinates"`
}

// NearbyCandidate is a candidate returned by proximity search.
type NearbyCandidate struct {
	Candidate   User           `json:"candidate"`
	DistanceKm  float64        `json:"distanceKm"`
	Coordinates geo.Coordinate `json:"coordinates"`
}

// MapMarker is the lightweight projection used by the map view.
type MapMarker struct {
	Kind        EntityKind     `json:"kind"`
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Category    string         `json:"category,omitempty"`
	Coordinates geo.Coordinate `json:"coordinates"`
	Cluster     string         `json:"cluster"`
	ClusterSize int            `json:"clusterSize"`
}

// Recommendation is one scored, explained job for a user.
type Recommendation struct {
	Job     Job      `json:"job"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}
