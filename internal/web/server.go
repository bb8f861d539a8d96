// Package web is the control surface: a small session-authenticated UI
// for registering monitoring tasks, cancelling them, and inspecting
// confirmed bookings and the currently bookable dates.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/gaiola-watcher/internal/auth"
	"github.com/example/gaiola-watcher/internal/bookings"
	"github.com/example/gaiola-watcher/internal/catalog"
	"github.com/example/gaiola-watcher/internal/monitor"
	"github.com/example/gaiola-watcher/internal/site"
)

//go:embed templates/*.html static/*
var fs embed.FS

type Server struct {
	Auth     *auth.Store
	Monitor  *monitor.Monitor
	Bookings bookings.Store
}

type tmplData struct {
	Title string
	User  int64

	Flash    string
	Tasks    []monitor.Task
	Task     monitor.Task
	Dates    []string
	Bookings []bookings.Record
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.FileServer(http.FS(fs)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.Auth.RequireAuth(http.HandlerFunc(s.handleHome)))
	mux.Handle("/tasks/new", s.Auth.RequireAuth(http.HandlerFunc(s.handleTaskNew)))
	mux.Handle("/tasks/create", s.Auth.RequireAuth(http.HandlerFunc(s.handleTaskCreate)))
	mux.Handle("/tasks/cancel", s.Auth.RequireAuth(http.HandlerFunc(s.handleTaskCancel)))
	mux.Handle("/dates", s.Auth.RequireAuth(http.HandlerFunc(s.handleDates)))
	mux.Handle("/bookings", s.Auth.RequireAuth(http.HandlerFunc(s.handleBookings)))
	mux.Handle("/bookings/delete", s.Auth.RequireAuth(http.HandlerFunc(s.handleBookingDelete)))

	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s.render(w, "templates/tasks.html", tmplData{
		Title: "Tasks",
		User:  uid,
		Tasks: s.Monitor.Registry().List(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
		return
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		id, err := s.Auth.Authenticate(r.Context(), username, password)
		if err != nil {
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Auth.SetSession(w, r, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleTaskNew(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s.render(w, "templates/new_task.html", tmplData{
		Title: "New Task",
		User:  uid,
		Dates: s.Monitor.Dates(),
	})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var shifts []catalog.Shift
	for _, v := range r.Form["shifts"] {
		sh, err := catalog.ParseShift(v)
		if err != nil {
			s.renderNewTask(w, uid, "Invalid shift "+v)
			return
		}
		shifts = append(shifts, sh)
	}

	t := &monitor.Task{
		Subscriber: strings.TrimSpace(r.FormValue("subscriber")),
		Subject: site.Subject{
			Name:         strings.TrimSpace(r.FormValue("name")),
			Surname:      strings.TrimSpace(r.FormValue("surname")),
			Sex:          strings.TrimSpace(r.FormValue("sex")),
			BirthDate:    strings.TrimSpace(r.FormValue("birth_date")),
			Birthplace:   strings.TrimSpace(r.FormValue("birthplace")),
			TaxCode:      strings.TrimSpace(r.FormValue("tax_code")),
			Email:        strings.TrimSpace(r.FormValue("email")),
			Country:      strings.TrimSpace(r.FormValue("country")),
			Province:     strings.TrimSpace(r.FormValue("province")),
			Municipality: strings.TrimSpace(r.FormValue("municipality")),
		},
		Contact: site.Contact{
			Email: strings.TrimSpace(r.FormValue("contact_email")),
			Phone: strings.TrimSpace(r.FormValue("contact_phone")),
		},
		Dates:  splitCSV(r.FormValue("dates")),
		Shifts: shifts,
	}

	if err := s.Monitor.Registry().Register(t); err != nil {
		s.renderNewTask(w, uid, err.Error())
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) renderNewTask(w http.ResponseWriter, uid int64, flash string) {
	s.render(w, "templates/new_task.html", tmplData{
		Title: "New Task",
		User:  uid,
		Flash: flash,
		Dates: s.Monitor.Dates(),
	})
}

func (s *Server) handleTaskCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	subscriber := strings.TrimSpace(r.FormValue("subscriber"))
	n := s.Monitor.Registry().Cancel(subscriber)
	slog.Info("tasks cancelled", "subscriber", subscriber, "count", n)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s.render(w, "templates/dates.html", tmplData{
		Title: "Dates",
		User:  uid,
		Dates: s.Monitor.Dates(),
	})
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	recs, err := s.Bookings.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "templates/bookings.html", tmplData{
		Title:    "Bookings",
		User:     uid,
		Bookings: recs,
	})
}

func (s *Server) handleBookingDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("subject_name"))
	code := strings.TrimSpace(r.FormValue("code"))
	deleted, err := s.Bookings.Delete(r.Context(), name, code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		slog.Warn("booking record not found", "subject", name, "code", code)
	}
	http.Redirect(w, r, "/bookings", http.StatusFound)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	fmt.Printf("listening on %s\n", addr)
	return srv.ListenAndServe()
}
