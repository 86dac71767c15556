// internal/domain/entity/exoplanet_row.go
package entity

import (
	"math"
	"strconv"
	"strings"
)

// ExoplanetRow is one row of the archive's planetary systems (ps) table
type ExoplanetRow struct {
	PlanetName    string        `json:"pl_name"`
	HostName      string        `json:"hostname"`
	DistancePc    ArchiveNumber `json:"sy_dist"`
	RadiusEarth   ArchiveNumber `json:"pl_rade"`
	MassEarth     ArchiveNumber `json:"pl_bmasse"`
	DiscoveryYear ArchiveNumber `json:"disc_year"`
}

// ArchiveNumber is a nullable numeric column. The archive occasionally
// returns numbers as strings, so both forms are accepted; anything else
// is kept as Malformed instead of failing the whole response.
type ArchiveNumber struct {
	Value     float64
	Valid     bool
	Malformed bool
	Raw       string
}

// UnmarshalJSON implements json.Unmarshaler
func (n *ArchiveNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = ArchiveNumber{}
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*n = ArchiveNumber{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = ArchiveNumber{Malformed: true, Raw: s}
		return nil
	}

	*n = ArchiveNumber{Value: v, Valid: true}
	return nil
}

// Float returns the value, or nil when the column is absent or malformed
func (n ArchiveNumber) Float() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
