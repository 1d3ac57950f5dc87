// Package pbtest runs an in-memory imitation of the records/auth REST API for
// tests. It understands enough of the list/filter/sort surface for the queries
// this repository issues.
package pbtest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenSecret signs the tokens handed out by auth-with-password.
const TokenSecret = "pbtest-secret"

const timeLayout = "2006-01-02 15:04:05.000Z"

// Record is a stored record.
type Record map[string]any

type failure struct {
	status  int
	message string
	data    map[string]any
}

// Server is a fake backend.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]Record
	schema      map[string]map[string]string
	failures    map[string]failure
	protected   map[string]bool
	requests    []string
	files       map[string][]byte
}

// NewServer starts a fake backend with products and users collections.
// It is closed automatically when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		collections: map[string][]Record{"products": {}, "users": {}},
		schema: map[string]map[string]string{
			"products": {"price": "number", "stock": "number"},
			"users":    {"credit": "number", "verified": "bool", "verify_phone": "bool", "emailVisibility": "bool"},
		},
		failures:  map[string]failure{},
		protected: map[string]bool{},
		files:     map[string][]byte{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Seed inserts a record, filling id/collection/timestamps when missing, and
// returns its id.
func (s *Server) Seed(collection string, rec Record) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(collection, rec)
}

// Records returns a snapshot of a collection.
func (s *Server) Records(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.collections[collection]))
	for _, r := range s.collections[collection] {
		cp := Record{}
		for k, v := range r {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

// Get returns one stored record.
func (s *Server) Get(collection, id string) (Record, bool) {
	for _, r := range s.Records(collection) {
		if r["id"] == id {
			return r, true
		}
	}
	return nil, false
}

// Fail makes every request whose "METHOD /path" starts with prefix fail with
// status and message until Clear is called.
func (s *Server) Fail(prefix string, status int, message string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = failure{status: status, message: message, data: data}
}

// Clear removes injected failures.
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// Protect requires an Authorization header for every request to collection.
func (s *Server) Protect(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protected[collection] = true
}

// Requests returns "METHOD /path?query" for every request served.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// File returns uploaded bytes for a stored filename.
func (s *Server) File(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[name]
}

// IssueToken signs a token for record id valid for ttl.
func IssueToken(id string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"id":   id,
		"type": "auth",
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TokenSecret))
	if err != nil {
		panic(err)
	}
	return token
}

var (
	recordsPath = regexp.MustCompile(`^/api/collections/([^/]+)/records(?:/([^/]+))?$`)
	authPath    = regexp.MustCompile(`^/api/collections/([^/]+)/auth-with-password$`)
	filesPath   = regexp.MustCompile(`^/api/files/([^/]+)/([^/]+)/([^/]+)$`)
)

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		s.requests = append(s.requests, line+"?"+r.URL.RawQuery)
	} else {
		s.requests = append(s.requests, line)
	}
	for prefix, f := range s.failures {
		if strings.HasPrefix(line, prefix) {
			writeError(w, f.status, f.message, f.data)
			return
		}
	}

	switch {
	case r.URL.Path == "/api/health":
		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "message": "API is healthy."})
	case authPath.MatchString(r.URL.Path) && r.Method == http.MethodPost:
		s.authWithPassword(w, r, authPath.FindStringSubmatch(r.URL.Path)[1])
	case filesPath.MatchString(r.URL.Path) && r.Method == http.MethodGet:
		m := filesPath.FindStringSubmatch(r.URL.Path)
		data, ok := s.files[m[3]]
		if !ok {
			writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
			return
		}
		_, _ = w.Write(data)
	case recordsPath.MatchString(r.URL.Path):
		m := recordsPath.FindStringSubmatch(r.URL.Path)
		s.records(w, r, m[1], m[2])
	default:
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
	}
}

func (s *Server) records(w http.ResponseWriter, r *http.Request, collection, id string) {
	if _, ok := s.collections[collection]; !ok {
		writeError(w, http.StatusNotFound, "Missing collection context.", nil)
		return
	}
	if s.protected[collection] && r.Header.Get("Authorization") == "" {
		writeError(w, http.StatusForbidden, "Only admins can perform this action.", nil)
		return
	}

	switch {
	case id == "" && r.Method == http.MethodGet:
		s.list(w, r, collection)
	case id == "" && r.Method == http.MethodPost:
		fields, err := s.readBody(r, collection)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		if collection == "users" {
			if msg := validateNewUser(fields, s.collections["users"]); msg != nil {
				writeError(w, http.StatusBadRequest, "Failed to create record.", msg)
				return
			}
			delete(fields, "passwordConfirm")
		}
		newID := s.insert(collection, fields)
		writeJSON(w, http.StatusOK, public(s.find(collection, newID)))
	case r.Method == http.MethodGet:
		rec := s.find(collection, id)
		if rec == nil {
			writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
			return
		}
		writeJSON(w, http.StatusOK, public(rec))
	case r.Method == http.MethodPatch:
		rec := s.find(collection, id)
		if rec == nil {
			writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
			return
		}
		fields, err := s.readBody(r, collection)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		for k, v := range fields {
			rec[k] = v
		}
		rec["updated"] = time.Now().UTC().Format(timeLayout)
		writeJSON(w, http.StatusOK, public(rec))
	case r.Method == http.MethodDelete:
		list := s.collections[collection]
		for i, rec := range list {
			if rec["id"] == id {
				s.collections[collection] = append(list[:i], list[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.", nil)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	if perPage < 1 {
		perPage = 30
	}

	matcher, err := parseFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Something went wrong while processing your request. "+err.Error(), nil)
		return
	}

	var matched []Record
	for _, rec := range s.collections[collection] {
		if matcher(rec) {
			matched = append(matched, rec)
		}
	}
	if sortSpec := q.Get("sort"); sortSpec != "" {
		field, desc := strings.TrimPrefix(sortSpec, "-"), strings.HasPrefix(sortSpec, "-")
		sort.SliceStable(matched, func(i, j int) bool {
			less := compare(matched[i][field], matched[j][field]) < 0
			if desc {
				return compare(matched[i][field], matched[j][field]) > 0
			}
			return less
		})
	}

	start := (page - 1) * perPage
	items := []Record{}
	for i := start; i < len(matched) && i < start+perPage; i++ {
		items = append(items, public(matched[i]))
	}
	totalItems, totalPages := len(matched), (len(matched)+perPage-1)/perPage
	if q.Get("skipTotal") != "" {
		totalItems, totalPages = -1, -1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"perPage":    perPage,
		"totalItems": totalItems,
		"totalPages": totalPages,
		"items":      items,
	})
}

func (s *Server) authWithPassword(w http.ResponseWriter, r *http.Request, collection string) {
	var body struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.", nil)
		return
	}
	for _, rec := range s.collections[collection] {
		if rec["email"] == body.Identity && rec["password"] == body.Password {
			writeJSON(w, http.StatusOK, map[string]any{
				"token":  IssueToken(rec["id"].(string), time.Hour),
				"record": public(rec),
			})
			return
		}
	}
	writeError(w, http.StatusBadRequest, "Failed to authenticate.", nil)
}

func (s *Server) readBody(r *http.Request, collection string) (Record, error) {
	fields := Record{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return nil, fmt.Errorf("parse multipart: %w", err)
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				fields[k] = s.coerce(collection, k, vs[0])
			}
		}
		for k, fhs := range r.MultipartForm.File {
			if len(fhs) == 0 {
				continue
			}
			f, err := fhs[0].Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, err
			}
			name := randomID(6) + "_" + fhs[0].Filename
			s.files[name] = data
			fields[k] = name
		}
		return fields, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	for k, v := range fields {
		if str, ok := v.(string); ok {
			fields[k] = s.coerce(collection, k, str)
		}
	}
	return fields, nil
}

func (s *Server) coerce(collection, field, value string) any {
	switch s.schema[collection][field] {
	case "number":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0.0
		}
		return f
	case "bool":
		return value == "true" || value == "1" || value == "on"
	}
	return value
}

func (s *Server) insert(collection string, rec Record) string {
	cp := Record{}
	for k, v := range rec {
		cp[k] = v
	}
	if _, ok := cp["id"]; !ok {
		cp["id"] = randomID(15)
	}
	now := time.Now().UTC().Format(timeLayout)
	if _, ok := cp["created"]; !ok {
		cp["created"] = now
	}
	if _, ok := cp["updated"]; !ok {
		cp["updated"] = cp["created"]
	}
	cp["collectionId"] = "pbc_" + collection
	cp["collectionName"] = collection
	s.collections[collection] = append(s.collections[collection], cp)
	return cp["id"].(string)
}

func (s *Server) find(collection, id string) Record {
	for _, rec := range s.collections[collection] {
		if rec["id"] == id {
			return rec
		}
	}
	return nil
}

func validateNewUser(fields Record, existing []Record) map[string]any {
	email, _ := fields["email"].(string)
	for _, rec := range existing {
		if rec["email"] == email {
			return map[string]any{"email": map[string]any{"code": "validation_not_unique", "message": "Value must be unique."}}
		}
	}
	if fields["password"] != fields["passwordConfirm"] {
		return map[string]any{"passwordConfirm": map[string]any{"code": "validation_values_mismatch", "message": "Values don't match."}}
	}
	return nil
}

func public(rec Record) Record {
	out := Record{}
	for k, v := range rec {
		if k == "password" {
			continue
		}
		out[k] = v
	}
	return out
}

var clausePattern = regexp.MustCompile(`^\s*(\w+)\s*(!=|>=|<=|=|>|<|~)\s*(.+?)\s*$`)

func parseFilter(filter string) (func(Record) bool, error) {
	if strings.TrimSpace(filter) == "" {
		return func(Record) bool { return true }, nil
	}
	var preds []func(Record) bool
	for _, clause := range strings.Split(filter, "&&") {
		m := clausePattern.FindStringSubmatch(clause)
		if m == nil {
			return nil, fmt.Errorf("invalid filter clause %q", clause)
		}
		field, op := m[1], m[2]
		want, err := parseLiteral(m[3])
		if err != nil {
			return nil, err
		}
		preds = append(preds, func(rec Record) bool {
			c := compare(rec[field], want)
			switch op {
			case "=":
				return c == 0
			case "!=":
				return c != 0
			case ">":
				return c > 0
			case ">=":
				return c >= 0
			case "<":
				return c < 0
			case "<=":
				return c <= 0
			case "~":
				return strings.Contains(strings.ToLower(fmt.Sprint(rec[field])), strings.ToLower(fmt.Sprint(want)))
			}
			return false
		})
	}
	return func(rec Record) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}, nil
}

func parseLiteral(raw string) (any, error) {
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("invalid string literal %s", raw)
		}
		return s, nil
	}
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %s", raw)
	}
	return f, nil
}

func compare(a, b any) int {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	writeJSON(w, status, map[string]any{"code": status, "status": status, "message": message, "data": data})
}

func randomID(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}
