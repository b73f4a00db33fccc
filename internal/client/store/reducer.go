package store

import (
	"slices"

	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/shopspring/decimal"
)

// Reduce returns the state after a. It never mutates s: every slice or
// profile it changes is copied first.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Initialized:
		s.Initialized = true

	case SetLoading:
		s.Loading = a.Loading

	case LoggedIn:
		s.Authenticated = true
		s.User = a.User.Clone()
		s.SessionInfo = a.Session
		if authViews[s.View] {
			s.View = ViewHome
		}

	case LoggedOut:
		s.Authenticated = false
		s.User = nil
		s.SessionInfo = models.SessionInfo{}
		s.Loading = false
		s.View = ViewLogin

	case UserUpdated:
		if !s.Authenticated {
			return s
		}
		s.User = a.User.Clone()
		s.SessionInfo = a.Session

	case Navigated:
		s.View = a.View
		s.SelectedVenue = a.VenueID
		if a.View == ViewProfile && !s.Authenticated {
			s.View = ViewLogin
		}

	case LocationReplaced:
		s.Location = a.URL

	case NotificationAdded:
		s.Notifications = append(slices.Clone(s.Notifications), a.Notification)

	case NotificationRemoved:
		s.Notifications = slices.DeleteFunc(slices.Clone(s.Notifications), func(n models.Notification) bool {
			return n.ID == a.ID
		})

	case VenuesLoaded:
		s.Venues = make([]models.Venue, len(a.Venues))
		for i, v := range a.Venues {
			s.Venues[i] = v.Clone()
		}

	case VenueFollowed:
		return follow(s, a.VenueID, true)

	case VenueUnfollowed:
		return follow(s, a.VenueID, false)

	case VenueRated:
		return rate(s, a.VenueID, a.Review)

	case ReviewMarkedHelpful:
		return updateVenue(s, a.VenueID, func(v *models.Venue) bool {
			i := slices.IndexFunc(v.Reviews, func(r models.Review) bool { return r.ID == a.ReviewID })
			if i < 0 {
				return false
			}
			v.Reviews[i].Helpful++
			return true
		})

	case VenueReported:
		return report(s, a.Report)
	}
	return s
}

// updateVenue applies fn to a copy of the venue with id. The state is
// returned unchanged when the venue is unknown or fn reports no change.
func updateVenue(s State, id models.VenueID, fn func(v *models.Venue) bool) State {
	i := slices.IndexFunc(s.Venues, func(v models.Venue) bool { return v.ID == id })
	if i < 0 {
		return s
	}
	v := s.Venues[i].Clone()
	if !fn(&v) {
		return s
	}
	s.Venues = slices.Clone(s.Venues)
	s.Venues[i] = v
	return s
}

func follow(s State, id models.VenueID, on bool) State {
	if s.User == nil {
		return s
	}
	u := s.User.Clone()
	var changed bool
	if on {
		changed = u.Follow(id)
	} else {
		changed = u.Unfollow(id)
	}
	if !changed {
		return s
	}
	s.User = u
	return updateVenue(s, id, func(v *models.Venue) bool {
		if on {
			v.FollowersCount++
		} else if v.FollowersCount > 0 {
			v.FollowersCount--
		}
		return true
	})
}

func rate(s State, id models.VenueID, r models.Review) State {
	if _, ok := s.Venue(id); !ok {
		return s
	}
	next := updateVenue(s, id, func(v *models.Venue) bool {
		v.Rating = AverageRating(v.Rating, v.TotalRatings, r.Rating)
		v.TotalRatings++
		v.Reviews = append(v.Reviews, r)
		return true
	})
	if next.User != nil {
		u := next.User.Clone()
		u.TotalRatings++
		next.User = u
	}
	return next
}

func report(s State, r models.CrowdReport) State {
	if _, ok := s.Venue(r.VenueID); !ok {
		return s
	}
	next := updateVenue(s, r.VenueID, func(v *models.Venue) bool {
		v.CrowdLevel = r.CrowdLevel
		v.WaitTime = r.WaitTime
		v.Reports++
		v.Confidence = min(100, v.Confidence+5)
		return true
	})
	if next.User != nil {
		u := next.User.Clone()
		u.TotalReports++
		next.User = u
	}
	return next
}

// AverageRating folds one more rating into an average over total ratings,
// rounded to one decimal.
func AverageRating(current float64, total, added int) float64 {
	sum := decimal.NewFromFloat(current).
		Mul(decimal.NewFromInt(int64(total))).
		Add(decimal.NewFromInt(int64(added)))
	avg, _ := sum.Div(decimal.NewFromInt(int64(total + 1))).Round(1).Float64()
	return avg
}
