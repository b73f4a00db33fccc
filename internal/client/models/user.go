// Package models defines client-side data models of the nYtevibe client.
package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// VenueID identifies a venue.
type VenueID int64

// UserProfile is the cached profile of the signed-in user. It is replaced
// wholesale on every successful token validation.
type UserProfile struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Level            string    `json:"level"`
	Points           int       `json:"points"`
	FollowedVenueIDs []VenueID `json:"followed_venue_ids"`
	TotalReports     int       `json:"total_reports"`
	TotalRatings     int       `json:"total_ratings"`
}

// userAliases lists the accepted spellings per field; the backend is not
// consistent between snake_case and camelCase.
var userAliases = map[string][]string{
	"id":                 {"id", "user_id", "userId"},
	"username":           {"username", "user_name"},
	"first_name":         {"first_name", "firstName"},
	"last_name":          {"last_name", "lastName"},
	"email":              {"email"},
	"level":              {"level"},
	"points":             {"points"},
	"followed_venue_ids": {"followed_venue_ids", "followedVenues", "followed_venues", "followedVenueIds"},
	"total_reports":      {"total_reports", "totalReports"},
	"total_ratings":      {"total_ratings", "totalRatings"},
}

// UnmarshalJSON accepts both naming styles and numeric or string ids.
func (u *UserProfile) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p, err := UserFromMap(raw)
	if err != nil {
		return err
	}
	*u = *p
	return nil
}

// UserFromMap builds a profile from a decoded JSON object. It fails only when
// the object carries no id, username or email at all.
func UserFromMap(raw map[string]any) (*UserProfile, error) {
	pick := func(field string) (any, bool) {
		for _, name := range userAliases[field] {
			if v, ok := raw[name]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}
	str := func(field string) string {
		v, ok := pick(field)
		if !ok {
			return ""
		}
		return scalarString(v)
	}
	num := func(field string) int {
		v, ok := pick(field)
		if !ok {
			return 0
		}
		n, _ := strconv.Atoi(scalarString(v))
		return n
	}

	u := &UserProfile{
		ID:           str("id"),
		Username:     str("username"),
		FirstName:    str("first_name"),
		LastName:     str("last_name"),
		Email:        str("email"),
		Level:        str("level"),
		Points:       num("points"),
		TotalReports: num("total_reports"),
		TotalRatings: num("total_ratings"),
	}
	if v, ok := pick("followed_venue_ids"); ok {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if id, err := strconv.ParseInt(scalarString(item), 10, 64); err == nil {
					u.Follow(VenueID(id))
				}
			}
		}
	}

	if u.ID == "" && u.Username == "" && u.Email == "" {
		return nil, fmt.Errorf("user object has no identifying fields")
	}
	return u, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// DisplayName prefers "First Last", then the username.
func (u *UserProfile) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Follows reports whether id is in the followed set.
func (u *UserProfile) Follows(id VenueID) bool {
	_, found := slices.BinarySearch(u.FollowedVenueIDs, id)
	return found
}

// Follow adds id to the followed set, keeping it sorted and unique.
// It returns false when id was already followed.
func (u *UserProfile) Follow(id VenueID) bool {
	i, found := slices.BinarySearch(u.FollowedVenueIDs, id)
	if found {
		return false
	}
	u.FollowedVenueIDs = slices.Insert(u.FollowedVenueIDs, i, id)
	return true
}

// Unfollow removes id from the followed set. It returns false when id was
// not followed.
func (u *UserProfile) Unfollow(id VenueID) bool {
	i, found := slices.BinarySearch(u.FollowedVenueIDs, id)
	if !found {
		return false
	}
	u.FollowedVenueIDs = slices.Delete(u.FollowedVenueIDs, i, i+1)
	return true
}

// Clone returns a deep copy.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	c.FollowedVenueIDs = slices.Clone(u.FollowedVenueIDs)
	return &c
}

// Equal compares two profiles field by field.
func (u *UserProfile) Equal(o *UserProfile) bool {
	if u == nil || o == nil {
		return u == o
	}
	return u.ID == o.ID &&
		u.Username == o.Username &&
		u.FirstName == o.FirstName &&
		u.LastName == o.LastName &&
		u.Email == o.Email &&
		u.Level == o.Level &&
		u.Points == o.Points &&
		u.TotalReports == o.TotalReports &&
		u.TotalRatings == o.TotalRatings &&
		slices.Equal(u.FollowedVenueIDs, o.FollowedVenueIDs)
}
