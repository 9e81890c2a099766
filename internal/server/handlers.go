package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/carlink/internal/services"
	"github.com/desertthunder/carlink/internal/session"
	"github.com/desertthunder/carlink/internal/shared"
	"github.com/desertthunder/carlink/internal/tasks"
)

// Request types the dispatch controller accepts.
const (
	RequestInfo     = "info"
	RequestLocation = "location"
	RequestOdometer = "odometer"
	RequestLock     = "lock"
	RequestUnlock   = "unlock"
)

// Ack is the synthesized payload for lock/unlock results; the provider's own
// response body is never rendered for commands.
type Ack struct {
	Action string `json:"action"`
}

// CommandResult is the displayable outcome of one dispatched request.
type CommandResult struct {
	Type    string
	Vehicle services.Vehicle
	Data    any
}

// App owns the demo's HTTP routes and drives the authorization/session state machine.
type App struct {
	svc    services.VehicleService
	fleet  *tasks.FleetEngine
	store  *session.Store
	logger *log.Logger
	views  *Views
}

// AppOpts contains the collaborators an [App] is constructed from.
type AppOpts struct {
	Service services.VehicleService
	Fleet   *tasks.FleetEngine
	Store   *session.Store
	Logger  *log.Logger
}

// NewApp creates the application handler set and parses the embedded views.
func NewApp(opts AppOpts) (*App, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("%w: vehicle service is required", shared.ErrInvalidConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: session store is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Fleet == nil {
		opts.Fleet = tasks.NewFleetEngine(opts.Service, opts.Logger)
	}

	views, err := NewViews()
	if err != nil {
		return nil, err
	}

	return &App{
		svc:    opts.Service,
		fleet:  opts.Fleet,
		store:  opts.Store,
		logger: opts.Logger,
		views:  views,
	}, nil
}

// Register attaches every application route to the router.
func (a *App) Register(r Router) {
	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.Home))
	r.Handle(http.MethodGet, "/callback", http.HandlerFunc(a.Callback))
	r.Handle(http.MethodGet, "/vehicles", http.HandlerFunc(a.Vehicles))
	r.Handle(http.MethodPost, "/request", http.HandlerFunc(a.Request))
	r.Handle(http.MethodGet, "/logout", http.HandlerFunc(a.Logout))
	r.Handle(http.MethodGet, "/error", http.HandlerFunc(a.ErrorPage))
	r.Handle(http.MethodGet, "/static/", StaticHandler())
}

// Home shows the entry point: the Connect URL and a simulated-mode indicator.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	a.views.Render(w, "home.html", map[string]any{
		"AuthURL":  a.svc.AuthURL(shared.GenerateID()),
		"TestMode": a.svc.TestMode(),
	})
}

// Callback completes the authorization flow. A visit without a code is not an
// error, just an incomplete flow: the visitor goes back to the home page.
func (a *App) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	token, err := a.svc.ExchangeCode(r.Context(), code)
	if err != nil {
		a.redirectError(w, r, err, "Failed to exchange code for an access token.", "exchanging authorization code for access token")
		return
	}

	sess := session.New(token)
	if err := a.store.Save(w, r, sess); err != nil {
		a.redirectError(w, r, err, "Failed to start a session.", "exchanging authorization code for access token")
		return
	}

	http.Redirect(w, r, "/vehicles", http.StatusFound)
}

// Vehicles lists every vehicle reachable with the session's token. The listing is
// all-or-nothing: a single metadata-fetch failure surfaces the error page and the
// session's vehicle mapping is left untouched.
func (a *App) Vehicles(w http.ResponseWriter, r *http.Request) {
	sess := a.store.Load(r)
	if !sess.Authorized() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	vehicles, err := a.fleet.ListVehicles(r.Context(), sess.Token())
	if err != nil {
		a.redirectError(w, r, err, "Failed to get vehicle info.", "fetching vehicle info")
		return
	}

	sess.Vehicles = vehicles
	if err := a.store.Save(w, r, sess); err != nil {
		a.redirectError(w, r, err, "Failed to get vehicle info.", "fetching vehicle info")
		return
	}

	a.views.Render(w, "vehicles.html", map[string]any{
		"Vehicles": vehicles,
	})
}

// Request dispatches one command or read against a selected vehicle. The vehicle
// lookup is permissive: an unknown ID proceeds with an empty vehicle record rather
// than failing, matching the demo's original behavior.
func (a *App) Request(w http.ResponseWriter, r *http.Request) {
	sess := a.store.Load(r)
	if !sess.Authorized() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		a.redirectError(w, r, err, "Failed to read the request form.", "sending request to vehicle")
		return
	}

	vehicleID := r.PostFormValue("vehicleId")
	requestType := r.PostFormValue("requestType")
	vehicle := sess.Vehicles[vehicleID]
	token := sess.Token()
	ctx := r.Context()

	result := CommandResult{Type: requestType, Vehicle: vehicle}

	switch requestType {
	case RequestInfo:
		info, err := a.svc.Info(ctx, token, vehicleID)
		if err != nil {
			a.redirectError(w, r, err, "Failed to get vehicle info.", "fetching vehicle info")
			return
		}
		result.Data = info
	case RequestLocation:
		location, err := a.svc.Location(ctx, token, vehicleID)
		if err != nil {
			a.redirectError(w, r, err, "Failed to get vehicle location.", "fetching vehicle location")
			return
		}
		result.Data = location
	case RequestOdometer:
		odometer, err := a.svc.Odometer(ctx, token, vehicleID)
		if err != nil {
			a.redirectError(w, r, err, "Failed to get vehicle odometer.", "fetching vehicle odometer")
			return
		}
		result.Data = odometer
	case RequestLock:
		if err := a.svc.Lock(ctx, token, vehicleID); err != nil {
			a.redirectError(w, r, err, "Failed to send lock request to vehicle.", "locking vehicle")
			return
		}
		result.Data = Ack{Action: "Lock request sent."}
	case RequestUnlock:
		if err := a.svc.Unlock(ctx, token, vehicleID); err != nil {
			a.redirectError(w, r, err, "Failed to send unlock request to vehicle.", "unlocking vehicle")
			return
		}
		result.Data = Ack{Action: "Unlock request sent."}
	default:
		a.redirectError(w, r, nil, fmt.Sprintf("Failed to find request type %s", requestType), "sending request to vehicle")
		return
	}

	a.views.Render(w, "result.html", map[string]any{
		"Result": result,
	})
}

// Logout disconnects every session vehicle in parallel, swallowing individual
// failures, then clears the session. Logout is unconditional: the visitor always
// lands back on the home page anonymous.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	sess := a.store.Load(r)
	if sess.Authorized() {
		a.fleet.DisconnectAll(r.Context(), sess.Token(), sess.VehicleIDs())
	}

	if err := a.store.Clear(w, r); err != nil {
		a.logger.Warn("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ErrorPage renders a failure with its message and the action that failed. With
// neither parameter present there is nothing meaningful to show, so the visitor
// goes home instead.
func (a *App) ErrorPage(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	action := r.URL.Query().Get("action")
	if message == "" && action == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	a.views.Render(w, "error.html", map[string]any{
		"Message": message,
		"Action":  action,
	})
}

// failureMessage prefers the failure's own text over the per-operation default.
func failureMessage(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// errorURL encodes a message and action as a navigable error-view request.
func errorURL(message, action string) string {
	query := url.Values{}
	query.Set("message", message)
	query.Set("action", action)
	return "/error?" + query.Encode()
}

func (a *App) redirectError(w http.ResponseWriter, r *http.Request, err error, fallback, action string) {
	message := failureMessage(err, fallback)
	a.logger.Error("request failed", "action", action, "error", message)
	http.Redirect(w, r, errorURL(message, action), http.StatusFound)
}
