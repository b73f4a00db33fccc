package store

import "github.com/nytevibe/nytevibe/internal/client/models"

// Action is the closed set of state transitions. Only types of this
// package implement it.
type Action interface {
	isAction()
}

type action struct{}

func (action) isAction() {}

type (
	// Initialized marks the end of startup.
	Initialized struct{ action }

	SetLoading struct {
		action
		Loading bool
	}

	// LoggedIn is dispatched on login and when a stored session is
	// restored at startup.
	LoggedIn struct {
		action
		User    *models.UserProfile
		Session models.SessionInfo
	}

	LoggedOut struct{ action }

	// UserUpdated replaces the profile wholesale.
	UserUpdated struct {
		action
		User    models.UserProfile
		Session models.SessionInfo
	}

	Navigated struct {
		action
		View    View
		VenueID models.VenueID
	}

	LocationReplaced struct {
		action
		URL string
	}

	NotificationAdded struct {
		action
		Notification models.Notification
	}

	NotificationRemoved struct {
		action
		ID string
	}

	VenuesLoaded struct {
		action
		Venues []models.Venue
	}

	VenueFollowed struct {
		action
		VenueID models.VenueID
	}

	VenueUnfollowed struct {
		action
		VenueID models.VenueID
	}

	VenueRated struct {
		action
		VenueID models.VenueID
		Review  models.Review
	}

	ReviewMarkedHelpful struct {
		action
		VenueID  models.VenueID
		ReviewID string
	}

	VenueReported struct {
		action
		Report models.CrowdReport
	}
)
