// File path: internal/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/userstore"
)

const (
	sessionName        = "flowgen_session"
	defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// ErrStateMismatch reports a callback whose state parameter does not match
// the nonce issued at login.
var ErrStateMismatch = errors.New("oauth state mismatch")

// GuestUser is the identity used when Google sign-in is not configured.
var GuestUser = userstore.User{UID: "guest", Name: "Guest"}

// Manager owns the Google sign-in flow and the session cookie that carries
// the signed-in profile between requests.
type Manager struct {
	oauth       *oauth2.Config
	sessions    *sessions.CookieStore
	users       userstore.Store
	userinfoURL string
	enabled     bool
}

func NewManager(cfg Config, users userstore.Store) *Manager {
	secret := strings.TrimSpace(cfg.SessionSecret)
	if secret == "" {
		secret = randomSecret()
		common.Logger().Warn("auth: SESSION_SECRET not set, sessions reset on restart")
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		sessions:    store,
		users:       users,
		userinfoURL: defaultUserinfoURL,
		enabled:     cfg.Enabled(),
	}
}

// Enabled reports whether Google sign-in is configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// BeginLogin stores a fresh state nonce in the session and redirects to the
// Google consent page.
func (m *Manager) BeginLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	session, _ := m.sessions.Get(r, sessionName)
	session.Values["oauth_state"] = state
	if err := session.Save(r, w); err != nil {
		common.Logger().Warn("auth: save state session", "error", err)
		http.Error(w, "could not start sign-in", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, m.oauth.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback validates state, exchanges the code, fetches the Google
// profile, and syncs it into the user store and the session.
func (m *Manager) HandleCallback(w http.ResponseWriter, r *http.Request) (userstore.User, error) {
	session, _ := m.sessions.Get(r, sessionName)
	want, _ := session.Values["oauth_state"].(string)
	delete(session.Values, "oauth_state")
	if want == "" || r.URL.Query().Get("state") != want {
		return userstore.User{}, ErrStateMismatch
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		return userstore.User{}, errors.New("missing authorization code")
	}
	token, err := m.oauth.Exchange(r.Context(), code)
	if err != nil {
		return userstore.User{}, fmt.Errorf("exchange code: %w", err)
	}
	profile, err := m.fetchProfile(r.Context(), token)
	if err != nil {
		return userstore.User{}, err
	}
	user := userstore.User{
		UID:     profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	}
	if m.users != nil {
		stored, err := m.users.Upsert(r.Context(), user)
		if err != nil {
			common.Logger().Warn("auth: user sync failed, continuing with session only", "uid", user.UID, "error", err)
		} else {
			user = stored
		}
	}
	session.Values["uid"] = user.UID
	session.Values["email"] = user.Email
	session.Values["name"] = user.Name
	session.Values["picture"] = user.Picture
	if err := session.Save(r, w); err != nil {
		return userstore.User{}, fmt.Errorf("save session: %w", err)
	}
	common.Logger().Info("auth: user signed in", "uid", user.UID)
	return user, nil
}

type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (m *Manager) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	client := m.oauth.Client(ctx, token)
	resp, err := client.Get(m.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if strings.TrimSpace(profile.ID) == "" {
		return nil, errors.New("userinfo missing subject id")
	}
	return &profile, nil
}

// CurrentUser returns the signed-in profile carried by the session cookie.
func (m *Manager) CurrentUser(r *http.Request) (userstore.User, bool) {
	if m == nil {
		return userstore.User{}, false
	}
	session, err := m.sessions.Get(r, sessionName)
	if err != nil {
		return userstore.User{}, false
	}
	uid, _ := session.Values["uid"].(string)
	if uid == "" {
		return userstore.User{}, false
	}
	email, _ := session.Values["email"].(string)
	name, _ := session.Values["name"].(string)
	picture, _ := session.Values["picture"].(string)
	return userstore.User{UID: uid, Email: email, Name: name, Picture: picture}, true
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := m.sessions.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		common.Logger().Warn("auth: clear session", "error", err)
	}
}

type userContextKey struct{}

// RequireUser redirects unauthenticated browser requests to /login. When
// sign-in is not configured every request proceeds as GuestUser.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), GuestUser)))
			return
		}
		user, ok := m.CurrentUser(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// WithUser attaches the signed-in profile to ctx.
func WithUser(ctx context.Context, user userstore.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the profile attached by RequireUser.
func UserFromContext(ctx context.Context) (userstore.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(userstore.User)
	return user, ok
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
