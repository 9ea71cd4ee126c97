package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/session"
)

const sessionCookie = "jobdash-session"

// login page messages
const (
	msgSelectUser  = "Please select a user to simulate SSO login."
	msgLoginFailed = "SSO authentication failed. Please try again."
)

type ctxKey struct{}

// sessionFrom returns the session put into context by auth middleware
func sessionFrom(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(session.Session)
	return sess, ok
}

// handleLoginForm displays the persona selector, authenticated users go to the dashboard
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if s.sessions.Pending(cookie.Value) {
			s.renderLoading(w, r)
			return
		}
		if _, err := s.sessions.Current(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, s.url("/"), http.StatusSeeOther)
			return
		}
	}
	s.renderLogin(w, r, http.StatusOK, "", "")
}

// handleLogin exchanges the mock SSO token of the selected persona for a backend session
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		s.renderLogin(w, r, http.StatusBadRequest, "", msgSelectUser)
		return
	}

	ssoToken, ok := s.app.TokenFor(email)
	if !ok {
		log.Printf("[WARN] login attempt for unknown persona %q", email)
		s.renderLogin(w, r, http.StatusUnauthorized, email, msgLoginFailed)
		return
	}

	sess, err := s.sessions.Login(r.Context(), ssoToken)
	if err != nil {
		log.Printf("[WARN] sso login failed for %s: %v", email, err)
		s.renderLogin(w, r, http.StatusUnauthorized, email, msgLoginFailed)
		return
	}

	s.setSessionCookie(w, sess.ID)
	http.Redirect(w, r, s.url("/"), http.StatusSeeOther)
}

// handleLogout clears the session without calling the backend
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		s.dropSession(cookie.Value)
	}
	s.clearSessionCookie(w)

	// tell HTMX to perform a full page refresh instead of swapping content
	w.Header().Set("HX-Refresh", "true")
	http.Redirect(w, r, s.url("/login"), http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, errMsg string) {
	data := s.newTemplateData(r, "Login")
	data.Personas = s.app.Personas
	data.Email = email
	data.Error = errMsg
	s.render(w, status, "login", data)
}

// authMiddleware resolves the session cookie and gates everything except public paths.
// Sessions without access get the access denied page on every gated route.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			s.unauthenticated(w, r)
			return
		}

		// this durable session is still being resolved, don't flash the login page
		if s.sessions.Pending(cookie.Value) {
			s.renderLoading(w, r)
			return
		}

		sess, err := s.sessions.Current(r.Context(), cookie.Value)
		if errors.Is(err, session.ErrNoSession) {
			s.pages.Drop(cookie.Value)
			s.clearSessionCookie(w)
			s.unauthenticated(w, r)
			return
		}
		if err != nil {
			log.Printf("[WARN] failed to resolve session: %v", err)
			if isAPI(r) {
				s.writeJSONError(w, http.StatusServiceUnavailable, "backend unavailable")
				return
			}
			http.Error(w, "Backend unavailable, try again later", http.StatusServiceUnavailable)
			return
		}

		if !sess.HasAccess() {
			s.accessDenied(w, r, sess)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

// handleBackendAuthError responds to auth related backend errors, returns false if err is not one of them.
// A rejected token ends the session, a denied identity gets the access denied view.
func (s *Server) handleBackendAuthError(w http.ResponseWriter, r *http.Request, sess session.Session, err error) bool {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		log.Printf("[INFO] backend rejected token of %s, logging out", sess.User.Email)
		s.dropSession(sess.ID)
		s.clearSessionCookie(w)
		s.unauthenticated(w, r)
		return true
	case errors.Is(err, backend.ErrForbidden):
		log.Printf("[INFO] backend denied access for %s", sess.User.Email)
		s.accessDenied(w, r, sess)
		return true
	}
	return false
}

// unauthenticated sends the client to the login page
func (s *Server) unauthenticated(w http.ResponseWriter, r *http.Request) {
	switch {
	case isAPI(r):
		s.writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	case isHTMX(r):
		w.Header().Set("HX-Redirect", s.url("/login"))
		w.WriteHeader(http.StatusUnauthorized)
	default:
		http.Redirect(w, r, s.url("/login"), http.StatusSeeOther)
	}
}

// accessDenied renders the access denied view, logout is the only way forward
func (s *Server) accessDenied(w http.ResponseWriter, r *http.Request, sess session.Session) {
	switch {
	case isAPI(r):
		s.writeJSONError(w, http.StatusForbidden, "access denied")
	case isHTMX(r):
		// reload the whole page, gated pages render the access denied view
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusForbidden)
	default:
		data := s.newTemplateData(r, "Access Denied")
		data.User = sess.User
		s.render(w, http.StatusForbidden, "access_denied", data)
	}
}

func (s *Server) renderLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	if isAPI(r) || isHTMX(r) {
		http.Error(w, "Loading", http.StatusServiceUnavailable)
		return
	}
	s.render(w, http.StatusOK, "loading", s.newTemplateData(r, "Loading"))
}

func (s *Server) dropSession(sid string) {
	s.pages.Drop(sid)
	if err := s.sessions.Logout(sid); err != nil {
		log.Printf("[WARN] failed to logout: %v", err)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     s.cookiePath(),
		MaxAge:   int(s.loginTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookie,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     s.cookiePath(),
		MaxAge:   -1, // delete cookie
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookie,
	})
}

// isPublic reports paths served without a session
func isPublic(path string) bool {
	return path == "/login" || path == "/logout" || strings.HasPrefix(path, "/static/")
}

func isHTMX(r *http.Request) bool { return r.Header.Get("HX-Request") == "true" }

func isAPI(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/api/v1/") }
