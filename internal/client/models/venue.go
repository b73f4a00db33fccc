package models

import (
	"slices"
	"time"
)

// Venue is a nightlife venue with its live crowd status. CrowdLevel is a
// percentage (0–100); WaitTime is in minutes.
type Venue struct {
	ID             VenueID  `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Address        string   `json:"address"`
	Rating         float64  `json:"rating"`
	TotalRatings   int      `json:"total_ratings"`
	CrowdLevel     int      `json:"crowd_level"`
	WaitTime       int      `json:"wait_time"`
	FollowersCount int      `json:"followers_count"`
	Reports        int      `json:"reports"`
	Confidence     int      `json:"confidence"`
	HasPromotion   bool     `json:"has_promotion"`
	PromotionText  string   `json:"promotion_text"`
	Vibe           []string `json:"vibe"`
	Reviews        []Review `json:"reviews"`
}

// Review is appended once on rating submission; afterwards only Helpful
// changes.
type Review struct {
	ID      string    `json:"id"`
	User    string    `json:"user"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
	Helpful int       `json:"helpful"`
}

// CrowdReport is a user-submitted live status observation.
type CrowdReport struct {
	ID         string    `json:"id"`
	VenueID    VenueID   `json:"venue_id"`
	CrowdLevel int       `json:"crowd_level"`
	WaitTime   int       `json:"wait_time"`
	Submitted  time.Time `json:"submitted"`
}

// Clone returns a deep copy so reducers never share slices between states.
func (v Venue) Clone() Venue {
	v.Vibe = slices.Clone(v.Vibe)
	v.Reviews = slices.Clone(v.Reviews)
	return v
}

// CrowdLabel buckets CrowdLevel for display.
func (v Venue) CrowdLabel() string {
	switch {
	case v.CrowdLevel >= 80:
		return "packed"
	case v.CrowdLevel >= 60:
		return "busy"
	case v.CrowdLevel >= 30:
		return "moderate"
	default:
		return "quiet"
	}
}
