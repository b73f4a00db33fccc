// Package store holds the application state of the client: the current
// view, the session, venue data and notifications. State changes only
// through Dispatch, and the reducer is pure.
package store

import "github.com/nytevibe/nytevibe/internal/client/models"

type View string

const (
	ViewHome           View = "home"
	ViewLogin          View = "login"
	ViewRegister       View = "register"
	ViewForgotPassword View = "forgot-password"
	ViewResetPassword  View = "reset-password"
	ViewVerifyEmail    View = "verify-email"
	ViewVenue          View = "venue"
	ViewProfile        View = "profile"
)

// authViews are left for home once the user signs in.
var authViews = map[View]bool{
	ViewLogin:          true,
	ViewRegister:       true,
	ViewForgotPassword: true,
}

// State is an immutable snapshot. Reduce never modifies a State it was
// given, so snapshots can be shared freely.
type State struct {
	View          View
	SelectedVenue models.VenueID
	// Location is the link the client is currently handling, with consumed
	// parameters stripped.
	Location      string
	Initialized   bool
	Authenticated bool
	User          *models.UserProfile
	SessionInfo   models.SessionInfo
	Venues        []models.Venue
	Notifications []models.Notification
	Loading       bool
}

// Venue returns the venue with id.
func (s State) Venue(id models.VenueID) (models.Venue, bool) {
	for _, v := range s.Venues {
		if v.ID == id {
			return v, true
		}
	}
	return models.Venue{}, false
}

// Initial is the state before hydration.
func Initial() State {
	return State{View: ViewHome}
}
