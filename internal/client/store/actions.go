package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/logging"
)

// Session is the part of the credential store the actions read and write.
type Session interface {
	Token(ctx context.Context) string
	StoredUser(ctx context.Context) *models.UserProfile
	SessionInfo(ctx context.Context) models.SessionInfo
	SetUser(ctx context.Context, u *models.UserProfile) error
	Clear(ctx context.Context)
}

// Actions are the only entry point views use to change state. They call
// the auth service, dispatch the outcome and raise notifications.
//
// Results carrying services.CodeCanceled come from an abandoned flow and
// are dropped without touching state.
type Actions struct {
	store  *Store
	auth   services.AuthService
	creds  Session
	logger logging.Logger
	now    func() time.Time

	ready     chan struct{}
	readyOnce sync.Once

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewActions(s *Store, auth services.AuthService, creds Session, logger logging.Logger) *Actions {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Actions{
		store:  s,
		auth:   auth,
		creds:  creds,
		logger: logger.With("component", "actions"),
		now:    time.Now,
		ready:  make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

// Ready is closed by MarkInitialized.
func (a *Actions) Ready() <-chan struct{} { return a.ready }

// Hydrate restores a stored session at startup. It reports whether one was
// found; the session monitor validates it afterwards.
func (a *Actions) Hydrate(ctx context.Context) bool {
	if a.creds.Token(ctx) == "" {
		a.store.Dispatch(Navigated{View: ViewLogin})
		return false
	}
	a.store.Dispatch(LoggedIn{User: a.creds.StoredUser(ctx), Session: a.creds.SessionInfo(ctx)})
	return true
}

// MarkInitialized ends startup and releases whatever waits on Ready.
func (a *Actions) MarkInitialized() {
	a.store.Dispatch(Initialized{})
	a.readyOnce.Do(func() { close(a.ready) })
}

func (a *Actions) loading(on bool) {
	a.store.Dispatch(SetLoading{Loading: on})
}

// Login signs in. The result is also reported as a notification.
func (a *Actions) Login(ctx context.Context, c services.Credentials, rememberMe bool) services.Result {
	a.loading(true)
	res := a.auth.Login(ctx, c, rememberMe)
	a.loading(false)

	switch {
	case res.Canceled():
		return res
	case !res.Success:
		if res.Code != services.CodeValidationError {
			a.Notify(models.NotificationError, res.Message, 0)
		}
		return res
	}
	a.signedIn(ctx, res.User, "Welcome back")
	return res
}

// Register creates an account. Replies that include a token sign the user
// in; otherwise the login view is shown.
func (a *Actions) Register(ctx context.Context, reg services.Registration) services.Result {
	a.loading(true)
	res := a.auth.Register(ctx, reg)
	a.loading(false)

	switch {
	case res.Canceled():
		return res
	case !res.Success:
		if res.Code != services.CodeValidationError {
			a.Notify(models.NotificationError, res.Message, 0)
		}
		return res
	}
	if a.creds.Token(ctx) != "" {
		a.signedIn(ctx, res.User, "Welcome to nYtevibe")
		return res
	}
	a.store.Dispatch(Navigated{View: ViewLogin})
	a.Notify(models.NotificationSuccess, "Account created. Check your email to verify it, then log in.", 5*time.Second)
	return res
}

func (a *Actions) signedIn(ctx context.Context, u *models.UserProfile, greeting string) {
	if a.creds.Token(ctx) == "" {
		a.Notify(models.NotificationError, "Signed in, but no session was issued. Please try again.", 0)
		return
	}
	if u == nil {
		u = a.creds.StoredUser(ctx)
	}
	a.store.Dispatch(LoggedIn{User: u, Session: a.creds.SessionInfo(ctx)})
	name := ""
	if u != nil {
		name = ", " + u.DisplayName()
	}
	a.Notify(models.NotificationSuccess, greeting+name+"!", 0)
}

// Logout ends the session locally and, when a token is still stored, on
// the server. It is also the session monitor's logout sink, in which case
// the credentials are already gone.
func (a *Actions) Logout(ctx context.Context) {
	expired := a.creds.Token(ctx) == ""
	a.auth.Logout(ctx)
	a.store.Dispatch(LoggedOut{})
	if expired {
		a.Notify(models.NotificationInfo, "Your session has expired. Please log in again.", 0)
		return
	}
	a.Notify(models.NotificationInfo, "You have been logged out.", 0)
}

// UpdateUser replaces the profile in state; it is the monitor's update
// sink.
func (a *Actions) UpdateUser(ctx context.Context, u models.UserProfile) {
	a.store.Dispatch(UserUpdated{User: u, Session: a.creds.SessionInfo(ctx)})
}

func (a *Actions) Navigate(v View) {
	a.store.Dispatch(Navigated{View: v})
}

// OpenVenue shows a venue. Unknown ids raise an error notification.
func (a *Actions) OpenVenue(id models.VenueID) bool {
	if _, ok := a.store.State().Venue(id); !ok {
		a.Notify(models.NotificationError, fmt.Sprintf("Venue %d not found", id), 0)
		return false
	}
	a.store.Dispatch(Navigated{View: ViewVenue, VenueID: id})
	return true
}

// Notify shows a message that removes itself after d, or after
// models.DefaultNotificationDuration when d is not positive.
func (a *Actions) Notify(typ models.NotificationType, msg string, d time.Duration) string {
	if d <= 0 {
		d = models.DefaultNotificationDuration
	}
	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   msg,
		Duration:  d,
		Timestamp: a.now(),
	}
	a.store.Dispatch(NotificationAdded{Notification: n})

	a.mu.Lock()
	a.timers[n.ID] = time.AfterFunc(d, func() { a.Dismiss(n.ID) })
	a.mu.Unlock()
	return n.ID
}

// Dismiss removes a notification before it expires.
func (a *Actions) Dismiss(id string) {
	a.mu.Lock()
	if t, ok := a.timers[id]; ok {
		t.Stop()
		delete(a.timers, id)
	}
	a.mu.Unlock()
	a.store.Dispatch(NotificationRemoved{ID: id})
}

// Close cancels pending notification timers.
func (a *Actions) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}

func (a *Actions) LoadVenues(venues []models.Venue) {
	a.store.Dispatch(VenuesLoaded{Venues: venues})
}

// requireUser returns the signed-in profile or raises an error
// notification mentioning what needs a login.
func (a *Actions) requireUser(what string) (*models.UserProfile, bool) {
	st := a.store.State()
	if !st.Authenticated || st.User == nil {
		a.Notify(models.NotificationError, "Please log in to "+what, 0)
		return nil, false
	}
	return st.User, true
}

// persistUser writes the profile in state back to the credential store so
// the cached copy follows local changes.
func (a *Actions) persistUser(ctx context.Context) {
	if u := a.store.State().User; u != nil {
		if err := a.creds.SetUser(ctx, u); err != nil {
			a.logger.Warn(ctx, "cached user not updated", "error", err)
		}
	}
}

// FollowVenue adds a venue to the followed set.
func (a *Actions) FollowVenue(ctx context.Context, id models.VenueID) bool {
	u, ok := a.requireUser("follow venues")
	if !ok {
		return false
	}
	v, known := a.store.State().Venue(id)
	if !known || u.Follows(id) {
		return false
	}
	a.store.Dispatch(VenueFollowed{VenueID: id})
	a.persistUser(ctx)
	a.Notify(models.NotificationSuccess, "Following "+v.Name, 0)
	return true
}

// UnfollowVenue removes a venue from the followed set.
func (a *Actions) UnfollowVenue(ctx context.Context, id models.VenueID) bool {
	u, ok := a.requireUser("follow venues")
	if !ok || !u.Follows(id) {
		return false
	}
	a.store.Dispatch(VenueUnfollowed{VenueID: id})
	a.persistUser(ctx)
	if v, known := a.store.State().Venue(id); known {
		a.Notify(models.NotificationInfo, "Unfollowed "+v.Name, 0)
	}
	return true
}

// RateVenue adds a 1–5 star review.
func (a *Actions) RateVenue(ctx context.Context, id models.VenueID, rating int, comment string) bool {
	u, ok := a.requireUser("rate venues")
	if !ok {
		return false
	}
	if rating < 1 || rating > 5 {
		a.Notify(models.NotificationError, "Rating must be between 1 and 5", 0)
		return false
	}
	if _, known := a.store.State().Venue(id); !known {
		return false
	}
	a.store.Dispatch(VenueRated{VenueID: id, Review: models.Review{
		ID:      uuid.NewString(),
		User:    u.DisplayName(),
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
		Date:    a.now(),
	}})
	a.persistUser(ctx)
	a.Notify(models.NotificationSuccess, "Thanks for your review!", 0)
	return true
}

func (a *Actions) MarkReviewHelpful(venueID models.VenueID, reviewID string) {
	a.store.Dispatch(ReviewMarkedHelpful{VenueID: venueID, ReviewID: reviewID})
}

// ReportVenue submits a live crowd level (0–100) and wait time in minutes.
func (a *Actions) ReportVenue(ctx context.Context, id models.VenueID, crowdLevel, waitMinutes int) bool {
	if _, ok := a.requireUser("report venue status"); !ok {
		return false
	}
	if crowdLevel < 0 || crowdLevel > 100 || waitMinutes < 0 {
		a.Notify(models.NotificationError, "Crowd level must be 0–100 and wait time not negative", 0)
		return false
	}
	if _, known := a.store.State().Venue(id); !known {
		return false
	}
	a.store.Dispatch(VenueReported{Report: models.CrowdReport{
		ID:         uuid.NewString(),
		VenueID:    id,
		CrowdLevel: crowdLevel,
		WaitTime:   waitMinutes,
		Submitted:  a.now(),
	}})
	a.persistUser(ctx)
	a.Notify(models.NotificationSuccess, "Thanks for the update!", 0)
	return true
}
