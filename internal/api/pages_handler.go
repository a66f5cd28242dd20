// File path: internal/api/pages_handler.go
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/auth"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	s.renderPage(w, http.StatusOK, "index.html", indexView{
		User:   user,
		AuthOn: s.auth.Enabled(),
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.renderPage(w, http.StatusOK, "login.html", loginView{
		AuthOn: s.auth.Enabled(),
		Error:  r.URL.Query().Get("error"),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Enabled() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.auth.BeginLogin(w, r)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.HandleCallback(w, r); err != nil {
		common.Logger().Warn("api: sign-in failed", "error", err)
		http.Redirect(w, r, "/login?error="+url.QueryEscape("sign-in failed, try again"), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	user, _ := auth.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		logger.Warn("api: generate form parse failed", "error", err)
		s.renderPage(w, http.StatusBadRequest, "index.html", indexView{
			User:   user,
			AuthOn: s.auth.Enabled(),
			Error:  "could not read the submitted form",
		})
		return
	}
	promptText := r.PostFormValue("prompt")
	action := strings.TrimSpace(r.PostFormValue("action"))

	out, err := s.generator.Generate(r.Context(), promptText)
	if err != nil {
		view := indexView{User: user, AuthOn: s.auth.Enabled(), Prompt: promptText}
		var emptyErr *flow.EmptyLogicError
		var graphErr *flow.MalformedGraphError
		switch {
		case errors.As(err, &emptyErr):
			view.Error = emptyErr.Error()
			s.renderPage(w, http.StatusUnprocessableEntity, "index.html", view)
		case errors.As(err, &graphErr):
			logger.Error("api: graph construction failed", "reason", graphErr.Reason)
			view.Error = "could not generate a flowchart"
			s.renderPage(w, http.StatusInternalServerError, "index.html", view)
		default:
			logger.Error("api: generation failed", "error", err)
			view.Error = "could not generate a flowchart"
			s.renderPage(w, http.StatusInternalServerError, "index.html", view)
		}
		return
	}

	view := resultView{
		User:     user,
		AuthOn:   s.auth.Enabled(),
		Prompt:   out.Prompt,
		Refined:  out.Refined,
		Code:     out.Code,
		Diagram:  out.Diagram,
		Warnings: out.Warnings,
		Provider: out.Provider,
		Cached:   out.Cached,
	}
	page := "flowchart.html"
	if action == "code" {
		page = "code.html"
	}
	s.renderPage(w, http.StatusOK, page, view)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		common.Logger().Error("api: render template failed", "template", name, "error", err)
	}
}
