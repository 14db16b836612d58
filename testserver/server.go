// Package testserver provides a fake of the training service for load tests.
//
// It implements the post-create, registration and training list endpoints
// with the same status conventions as the real API, so every outcome kind
// of the classifier can be reproduced locally.
package testserver

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// maxUploadSize bounds the multipart form held in memory.
const maxUploadSize = 32 << 20

// Training is one entry of the fake catalog.
type Training struct {
	ID                 string
	Title              string
	Start              time.Time
	End                time.Time
	TrainerName        string
	TrainerDesignation string
	Venue              string
	LastRegistration   time.Time
}

// Options tune the fake.
type Options struct {
	// Token, when set, is the only bearer token post-create accepts.
	// Otherwise any non-empty bearer token is accepted.
	Token string
	// Trainings replaces DefaultTrainings.
	Trainings []Training
	// FailRate is the percentage (0-100) of API requests answered with 500.
	FailRate int
}

// Server is the fake training service.
type Server struct {
	mux       *http.ServeMux
	opts      Options
	trainings []Training
	requestID atomic.Int64

	mu            sync.Mutex
	registrations map[string]string // email|training -> registration id
	posts         int
}

// NewServer creates a server with all endpoints configured.
func NewServer(opts Options) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		opts:          opts,
		trainings:     opts.Trainings,
		registrations: make(map[string]string),
	}
	if s.trainings == nil {
		s.trainings = DefaultTrainings()
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Registrations returns the number of accepted registrations.
func (s *Server) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}

// Posts returns the number of created posts.
func (s *Server) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/post/create", s.withFailures(s.handlePostCreate))
	s.mux.HandleFunc("/api/v1/training-registration", s.withFailures(s.handleRegistration))
	s.mux.HandleFunc("/api/v1/training/list-for-user", s.withFailures(s.handleTrainingList))
}

// DefaultTrainings is the catalog the load scripts register against, plus
// two trainings so the first page of six has a next page.
func DefaultTrainings() []Training {
	entries := []struct{ id, title string }{
		{"68fdbd54adeaed890251a76e", "Main Training"},
		{"68f890dd844d9ad7d2f39925", "Node.js Training 11"},
		{"68f890d3844d9ad7d2f39922", "Node.js Training 10"},
		{"68f890ca844d9ad7d2f3991f", "Node.js Training 09"},
		{"68f890c0844d9ad7d2f3991c", "Node.js Training 08"},
		{"68f88a48cbb8b656f316020b", "Node.js Training 04"},
		{"68f88a3ecbb8b656f3160208", "Node.js Training 03"},
		{"68f88a33cbb8b656f3160205", "Node.js Training 02"},
	}
	base := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	out := make([]Training, len(entries))
	for i, e := range entries {
		start := base.AddDate(0, 0, 7*i)
		out[i] = Training{
			ID:                 e.id,
			Title:              e.title,
			Start:              start,
			End:                start.Add(8 * time.Hour),
			TrainerName:        "Trainer " + strconv.Itoa(i+1),
			TrainerDesignation: "Senior Engineer",
			Venue:              "Room " + strconv.Itoa(101+i),
			LastRegistration:   start.AddDate(0, 0, -2),
		}
	}
	return out
}

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Response   any    `json:"response,omitempty"`
}

func writeJSON(w http.ResponseWriter, httpStatus int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(body)
}

// withFailures answers a FailRate share of requests with 500.
func (s *Server) withFailures(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.FailRate > 0 && rand.Intn(100) < s.opts.FailRate {
			http.Error(w, "simulated failure", http.StatusInternalServerError)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handlePostCreate accepts a multipart form with `content` and a `files`
// attachment. A bearer token is required.
func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, envelope{StatusCode: 401, Message: "Unauthorized"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "expected multipart form"})
		return
	}
	file, header, err := r.FormFile("files")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "files is required"})
		return
	}
	file.Close()

	s.mu.Lock()
	s.posts++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, envelope{
		StatusCode: 201,
		Message:    "Post created successfully",
		Response: map[string]any{
			"_id":     s.newID(),
			"content": r.FormValue("content"),
			"files":   []string{header.Filename},
		},
	})
}

func (s *Server) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return s.opts.Token == "" || token == s.opts.Token
}

type registrationRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	CompanyName   string `json:"companyName"`
	Designation   string `json:"designation"`
	LastEducation string `json:"lastEducation"`
	Training      string `json:"training"`
}

// handleRegistration mirrors the upstream API: business failures are
// answered with HTTP 201 and carry the real status in the body.
func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "Invalid JSON body"})
		return
	}
	if missing := req.missing(); len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			StatusCode: 422,
			Message:    "missing fields: " + strings.Join(missing, ", "),
		})
		return
	}
	if !s.hasTraining(req.Training) {
		writeJSON(w, http.StatusCreated, envelope{StatusCode: 404, Message: "Training not found"})
		return
	}

	key := strings.ToLower(req.Email) + "|" + req.Training
	s.mu.Lock()
	if _, dup := s.registrations[key]; dup {
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, envelope{StatusCode: 409, Message: "User already registered for this training"})
		return
	}
	id := s.newID()
	s.registrations[key] = id
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, envelope{
		StatusCode: 201,
		Message:    "Registration successful",
		Response: map[string]any{
			"_id":      id,
			"email":    req.Email,
			"training": req.Training,
		},
	})
}

func (r registrationRequest) missing() []string {
	var out []string
	for _, f := range []struct{ name, v string }{
		{"fullName", r.FullName},
		{"email", r.Email},
		{"contactNumber", r.ContactNumber},
		{"training", r.Training},
	} {
		if strings.TrimSpace(f.v) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

func (s *Server) hasTraining(id string) bool {
	for _, t := range s.trainings {
		if t.ID == id {
			return true
		}
	}
	return false
}

// handleTrainingList pages through trainings starting within
// [fromDate, toDate]. `select` limits the fields of each entry.
func (s *Server) handleTrainingList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil || page < 1 {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "invalid page"})
		return
	}
	limit, err := intParam(q.Get("limit"), 10)
	if err != nil || limit < 1 {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "invalid limit"})
		return
	}
	from, err := dateParam(q.Get("fromDate"), time.Time{})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "invalid fromDate"})
		return
	}
	to, err := dateParam(q.Get("toDate"), time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{StatusCode: 400, Message: "invalid toDate"})
		return
	}

	var matched []Training
	for _, t := range s.trainings {
		if !t.Start.Before(from) && t.Start.Before(to.AddDate(0, 0, 1)) {
			matched = append(matched, t)
		}
	}

	lo, hi := pageBounds(page, limit, len(matched))
	fields := selectFields(q.Get("select"))
	items := make([]map[string]any, 0, hi-lo)
	for _, t := range matched[lo:hi] {
		items = append(items, t.project(fields))
	}

	writeJSON(w, http.StatusOK, envelope{
		StatusCode: 200,
		Message:    "Trainings fetched successfully",
		Response: map[string]any{
			"training": items,
			"pagination": map[string]any{
				"page":    page,
				"limit":   limit,
				"total":   len(matched),
				"hasNext": hi < len(matched),
			},
		},
	})
}

func (t Training) project(fields map[string]bool) map[string]any {
	all := map[string]any{
		"_id":                      t.ID,
		"title":                    t.Title,
		"startDateTime":            t.Start.Format(time.RFC3339),
		"endDateTime":              t.End.Format(time.RFC3339),
		"trainerName":              t.TrainerName,
		"trainerDesignation":       t.TrainerDesignation,
		"trainingVenue":            t.Venue,
		"lastRegistrationDateTime": t.LastRegistration.Format(time.RFC3339),
	}
	if len(fields) == 0 {
		return all
	}
	out := make(map[string]any, len(fields))
	for k, v := range all {
		if fields[k] {
			out[k] = v
		}
	}
	return out
}

func selectFields(sel string) map[string]bool {
	if sel == "" {
		return nil
	}
	fields := make(map[string]bool)
	for _, f := range strings.Split(sel, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields[f] = true
		}
	}
	return fields
}

// pageBounds returns the slice bounds of page within n items. page and limit
// are positive; products that would overflow land past the end.
func pageBounds(page, limit, n int) (lo, hi int) {
	if page-1 > n/limit {
		return n, n
	}
	lo = min((page-1)*limit, n)
	hi = lo + min(limit, n-lo)
	return lo, hi
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func dateParam(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	return time.Parse("2006-01-02", v)
}

func (s *Server) newID() string {
	return fmt.Sprintf("%024x", s.requestID.Add(1))
}
