// internal/domain/entity/planet.go
package entity

import (
	"strings"
	"time"
)

// PlanetSource is the provenance tag stamped on every ingested record
const PlanetSource = "nasa-exoplanet-archive"

// Planet represents one astronomical body in the catalog.
// Nil pointers are absent values and are persisted as null.
type Planet struct {
	Key           string    `json:"key" bson:"key"` // slug of Name - unique index
	Name          string    `json:"name" bson:"name"`
	HostStar      string    `json:"hostStar" bson:"hostStar"`
	DiscoveryYear *int      `json:"discoveryYear" bson:"discoveryYear"`
	DistancePc    *float64  `json:"distancePc" bson:"distancePc"`
	DistanceLy    *float64  `json:"distanceLy" bson:"distanceLy"`
	DistanceMkm   *int64    `json:"distanceMkm" bson:"distanceMkm"`
	RadiusKm      *int64    `json:"radiusKm" bson:"radiusKm"`
	MassE24       *float64  `json:"massE24" bson:"massE24"`
	Source        string    `json:"source" bson:"source"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SortField names a sortable catalog field
type SortField string

const (
	SortByDistancePc  SortField = "distancePc"
	SortByDistanceMkm SortField = "distanceMkm"
	SortByName        SortField = "name"
)

// PlanetSort is a single field + direction ordering
type PlanetSort struct {
	Field      SortField
	Descending bool
}

// PlanetFilter is a conjunction of optional predicates.
// Zero values disable the predicate.
type PlanetFilter struct {
	// Query matches name or hostStar as a case-insensitive substring
	Query string
	// MaxDistanceMkm keeps records with distanceMkm <= MaxDistanceMkm when > 0
	MaxDistanceMkm float64
}

// Matches reports whether p satisfies every enabled predicate of f
func (f PlanetFilter) Matches(p *Planet) bool {
	if f.MaxDistanceMkm > 0 {
		if p.DistanceMkm == nil || float64(*p.DistanceMkm) > f.MaxDistanceMkm {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.HostStar), q) {
			return false
		}
	}
	return true
}
