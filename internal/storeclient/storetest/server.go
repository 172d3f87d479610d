// Пакет storetest — in-memory backend коллекции студентов для тестов.
// Реализует REST-контракт backend (GET/POST /students, GET/PUT/DELETE
// /students/{id}, GET /) и позволяет внедрять сбои: HTTP статусы и обрыв
// соединения без ответа.
package storetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
)

// Route — маршрут backend для подсчёта запросов и внедрения сбоев.
type Route string

const (
	RouteList   Route = "list"
	RouteGet    Route = "get"
	RouteCreate Route = "create"
	RouteUpdate Route = "update"
	RouteDelete Route = "delete"
	RouteHealth Route = "health"
)

// StatusDropConnection — внедрённый сбой без HTTP-ответа (соединение закрывается).
const StatusDropConnection = 0

// HealthBody — текст ответа GET /.
const HealthBody = "Student backend is running"

// Server — тестовый backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	students []model.Student
	nextID   int64
	failures map[Route][]int
	requests map[Route]int
	bodies   map[Route][]model.StudentDraft
	headers  map[Route][]http.Header
	// hooks — функции, вызываемые перед обработкой запроса маршрута
	hooks map[Route]func()
}

// New запускает тестовый backend с начальными записями.
// Записи без ID получают идентификаторы по порядку.
func New(t testing.TB, seed ...model.Student) *Server {
	t.Helper()

	s := &Server{
		nextID:   1,
		failures: make(map[Route][]int),
		requests: make(map[Route]int),
		bodies:   make(map[Route][]model.StudentDraft),
		headers:  make(map[Route][]http.Header),
		hooks:    make(map[Route]func()),
	}
	for _, st := range seed {
		s.insertLocked(st)
	}

	r := chi.NewRouter()
	r.Get("/", s.handleHealth)
	r.Get("/students", s.handleList)
	r.Post("/students", s.handleCreate)
	r.Get("/students/{id}", s.handleGet)
	r.Put("/students/{id}", s.handleUpdate)
	r.Delete("/students/{id}", s.handleDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailNext ставит в очередь сбои для маршрута: каждый следующий запрос
// получает очередной статус. StatusDropConnection обрывает соединение.
func (s *Server) FailNext(route Route, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], statuses...)
}

// OnRequest регистрирует функцию, вызываемую перед обработкой маршрута.
func (s *Server) OnRequest(route Route, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[route] = fn
}

// Requests возвращает количество запросов к маршруту (включая сбойные).
func (s *Server) Requests(route Route) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// Bodies возвращает тела запросов create/update в порядке поступления.
func (s *Server) Bodies(route Route) []model.StudentDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StudentDraft(nil), s.bodies[route]...)
}

// Headers возвращает заголовки запросов к маршруту.
func (s *Server) Headers(route Route) []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers[route]...)
}

// Students возвращает копию текущей коллекции.
func (s *Server) Students() []model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStudents(s.students)
}

// Put добавляет или заменяет запись напрямую, минуя HTTP.
func (s *Server) Put(st model.Student) model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID != nil {
		if i := s.indexLocked(*st.ID); i >= 0 {
			s.students[i] = st
			return st
		}
	}
	return s.insertLocked(st)
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, r, RouteHealth) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(HealthBody))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, r, RouteList) {
		return
	}
	s.mu.Lock()
	students := cloneStudents(s.students)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, r, RouteGet) {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	var st model.Student
	if idx >= 0 {
		st = s.students[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, r, RouteCreate) {
		return
	}
	draft, ok := s.decodeDraft(w, r, RouteCreate)
	if !ok {
		return
	}

	s.mu.Lock()
	created := s.insertLocked(model.Student{Name: draft.Name, Email: draft.Email})
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, r, RouteUpdate) {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	draft, ok := s.decodeDraft(w, r, RouteUpdate)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	var updated model.Student
	if idx >= 0 {
		s.students[idx].Name = draft.Name
		s.students[idx].Email = draft.Email
		updated = s.students[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, r, RouteDelete) {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx >= 0 {
		s.students = append(s.students[:idx], s.students[idx+1:]...)
	}
	s.mu.Unlock()

	if idx < 0 {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Вспомогательные функции ---

// begin учитывает запрос, вызывает hook и применяет внедрённый сбой.
// Возвращает true, если запрос уже обработан сбоем.
func (s *Server) begin(w http.ResponseWriter, r *http.Request, route Route) bool {
	s.mu.Lock()
	s.requests[route]++
	s.headers[route] = append(s.headers[route], r.Header.Clone())
	hook := s.hooks[route]
	status, failing := -1, false
	if queue := s.failures[route]; len(queue) > 0 {
		status, failing = queue[0], true
		s.failures[route] = queue[1:]
	}
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !failing {
		return false
	}

	if status == StatusDropConnection {
		dropConnection(w)
		return true
	}
	http.Error(w, http.StatusText(status), status)
	return true
}

// dropConnection закрывает TCP-соединение без ответа.
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic(http.ErrAbortHandler)
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	_ = conn.Close()
}

// decodeDraft читает тело create/update. Пустые поля — 400, как у backend.
func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request, route Route) (model.StudentDraft, bool) {
	var draft model.StudentDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return draft, false
	}

	s.mu.Lock()
	s.bodies[route] = append(s.bodies[route], draft)
	s.mu.Unlock()

	if draft.Name == "" || draft.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return draft, false
	}
	return draft, true
}

func (s *Server) insertLocked(st model.Student) model.Student {
	if st.ID == nil {
		st.ID = model.Int64Ptr(s.nextID)
	}
	if *st.ID >= s.nextID {
		s.nextID = *st.ID + 1
	}
	s.students = append(s.students, st)
	return st
}

func (s *Server) indexLocked(id int64) int {
	for i, st := range s.students {
		if st.ID != nil && *st.ID == id {
			return i
		}
	}
	return -1
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cloneStudents(in []model.Student) []model.Student {
	out := make([]model.Student, 0, len(in))
	for _, st := range in {
		if st.ID != nil {
			st.ID = model.Int64Ptr(*st.ID)
		}
		out = append(out, st)
	}
	return out
}
