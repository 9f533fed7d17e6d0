package client

import (
	"context"
	"errors"
	"fmt"

	"locationShare/internal/logging"
	"locationShare/internal/mapview"
	"locationShare/models"
)

// State is the top-level state of the map client.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Mode is the form shown while unauthenticated.
type Mode int

const (
	ModeLogin Mode = iota
	ModeBootstrap
)

func (m Mode) String() string {
	if m == ModeBootstrap {
		return "Create Admin"
	}
	return "Login"
}

// ErrNotAuthenticated is returned by map operations before sign-in.
var ErrNotAuthenticated = errors.New("not authenticated")

// Form holds the username and password inputs shared by the login and
// create-user forms.
type Form struct {
	Username string
	Password string
}

// App is the map client's state machine.
//
// The endpoint used by Submit is chosen from the admin-existence flag fetched
// by Start and is not refreshed afterwards. A client that saw no admin keeps
// posting to /api/init after another client has bootstrapped, and gets
// "admin already exists" back until Start is called again.
type App struct {
	api *Client

	state       State
	adminExists bool
	user        *User

	Form Form

	history   mapview.History
	selection *mapview.Selection
}

// NewApp returns an unauthenticated app. Until Start has run, the app assumes
// an admin exists and offers the login form.
func NewApp(api *Client) *App {
	return &App{api: api, adminExists: true}
}

func (a *App) State() State { return a.state }

func (a *App) User() *User { return a.user }

// Mode reports which unauthenticated form is shown.
func (a *App) Mode() Mode {
	if a.adminExists {
		return ModeLogin
	}
	return ModeBootstrap
}

// Start resumes an existing session, or fetches whether an admin exists so
// the right form can be offered.
func (a *App) Start(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	if u != nil {
		return a.enter(ctx, u)
	}
	exists, err := a.api.AdminExists(ctx)
	if err != nil {
		return err
	}
	a.adminExists = exists
	return nil
}

// Submit posts the form to login or bootstrap and, on success, re-reads the
// identity and switches to the map. On failure the server message is
// returned and the state is unchanged.
func (a *App) Submit(ctx context.Context) error {
	var err error
	if a.adminExists {
		_, err = a.api.Login(ctx, a.Form.Username, a.Form.Password)
	} else {
		err = a.api.Init(ctx, a.Form.Username, a.Form.Password)
	}
	if err != nil {
		return err
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return errors.New("session was not established")
	}
	return a.enter(ctx, u)
}

// CreateUser posts the form as a new user and clears it whatever the outcome.
func (a *App) CreateUser(ctx context.Context) (int64, error) {
	if a.state != Authenticated {
		return 0, ErrNotAuthenticated
	}
	f := a.Form
	a.Form = Form{}
	id, err := a.api.CreateUser(ctx, f.Username, f.Password)
	if err != nil {
		return 0, err
	}
	logging.Ctx(ctx).Debug().Int64("id", id).Str("username", f.Username).Msg("user created")
	return id, nil
}

// Logout ends the session and returns to the login form.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.state = Unauthenticated
	a.user = nil
	a.adminExists = true
	a.history = nil
	a.selection = nil
	return nil
}

// People lists everyone in the location table.
func (a *App) People() []string { return a.history.People() }

// Selection exposes the current date and active set.
func (a *App) Selection() *mapview.Selection { return a.selection }

// SetDate changes the selected date. Any string is accepted; a date with no
// entries simply yields no markers.
func (a *App) SetDate(date string) error {
	if a.selection == nil {
		return ErrNotAuthenticated
	}
	a.selection.SetDate(date)
	return nil
}

// Toggle flips whether name's markers are shown.
func (a *App) Toggle(name string) error {
	if a.selection == nil {
		return ErrNotAuthenticated
	}
	a.selection.Toggle(name)
	return nil
}

// Markers returns the markers for the current selection.
func (a *App) Markers() []models.Marker {
	if a.selection == nil {
		return nil
	}
	return mapview.Markers(a.history, a.selection)
}

// View returns the map viewport for the current markers.
func (a *App) View() mapview.View {
	return mapview.Fit(a.Markers())
}

func (a *App) enter(ctx context.Context, u *User) error {
	h, err := a.api.Locations(ctx)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	a.state = Authenticated
	a.user = u
	a.history = h
	a.selection = mapview.DefaultSelection(h)
	return nil
}
