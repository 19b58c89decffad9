package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"choreboard/internal/display"
	"choreboard/internal/metrics"
	"choreboard/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.tmpl"))
	adminTemplate     = template.Must(template.ParseFS(templateFS, "templates/admin.tmpl"))
)

// Server exposes the dashboard, the admin panel, and the JSON API.
type Server struct {
	tasks   *service.TaskService
	today   *service.TodayService
	order   *service.OrderService
	display *display.Controller
	logger  *slog.Logger
}

func NewServer(tasks *service.TaskService, today *service.TodayService, order *service.OrderService, ctrl *display.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{tasks: tasks, today: today, order: order, display: ctrl, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.dashboardPage)
	mux.HandleFunc("GET /admin", s.adminPage)

	mux.HandleFunc("GET /api/tasks/today", s.instrument("tasks_today", s.apiTasksToday))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.instrument("task_complete", s.apiCompleteTask))

	mux.HandleFunc("GET /api/tasks", s.instrument("tasks_list", s.apiListTasks))
	mux.HandleFunc("POST /api/tasks", s.instrument("task_create", s.apiCreateTask))
	mux.HandleFunc("GET /api/tasks/recurring", s.instrument("tasks_recurring", s.apiListRecurring))
	mux.HandleFunc("POST /api/tasks/reorder", s.instrument("tasks_reorder", s.apiReorderTasks))
	mux.HandleFunc("GET /api/tasks/{id}", s.instrument("task_get", s.apiGetTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.instrument("task_update", s.apiUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.instrument("task_delete", s.apiDeleteTask))
	mux.HandleFunc("GET /api/tasks/{id}/history", s.instrument("task_history", s.apiTaskHistory))
	mux.HandleFunc("POST /api/tasks/{id}/position", s.instrument("task_position", s.apiSetTaskPosition))

	mux.HandleFunc("POST /api/display/on", s.instrument("display_on", s.apiDisplayOn))
	mux.HandleFunc("POST /api/display/off", s.instrument("display_off", s.apiDisplayOff))

	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
	}
}

// ── Pages ──

func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	if err := dashboardTemplate.Execute(w, nil); err != nil {
		s.logger.Error("render dashboard", slog.String("error", err.Error()))
	}
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request) {
	if err := adminTemplate.Execute(w, nil); err != nil {
		s.logger.Error("render admin", slog.String("error", err.Error()))
	}
}

// ── Dashboard API ──

func (s *Server) apiTasksToday(w http.ResponseWriter, r *http.Request) {
	rows, err := s.today.TasksForToday(r.Context(), time.Now())
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) apiCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := s.tasks.CompleteTask(r.Context(), id, time.Now())
	if err != nil {
		s.serveError(w, err)
		return
	}
	if !ok {
		writeStatus(w, http.StatusNotFound, "Task not found")
		return
	}
	metrics.CompletionsRecorded.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Admin API ──

type taskRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	IsRecurring     *bool    `json:"is_recurring"`
	RecurrenceType  *string  `json:"recurrence_type"`
	RecurrenceValue *int     `json:"recurrence_value"`
	RecurrenceDays  []string `json:"recurrence_days"`
	StartDate       *string  `json:"start_date"`
	EndDate         *string  `json:"end_date"`
	Position        *int     `json:"position"`
}

func (s *Server) apiListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListActive(r.Context())
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) apiListRecurring(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListRecurring(r.Context())
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) apiCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input := service.TaskInput{Position: req.Position}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.IsRecurring != nil {
		input.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceType != nil {
		input.RecurrenceType = *req.RecurrenceType
	}
	if req.RecurrenceValue != nil {
		input.RecurrenceValue = *req.RecurrenceValue
	}
	input.RecurrenceDays = req.RecurrenceDays

	var err error
	if input.StartDate, err = parseDate(req.StartDate); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.EndDate, err = parseDate(req.EndDate); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.tasks.CreateTask(r.Context(), input)
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok", "id": task.ID})
}

func (s *Server) apiGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.tasks.GetTask(r.Context(), id)
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) apiUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	update := service.TaskUpdate{
		Title:           req.Title,
		Description:     req.Description,
		IsRecurring:     req.IsRecurring,
		RecurrenceType:  req.RecurrenceType,
		RecurrenceValue: req.RecurrenceValue,
		RecurrenceDays:  req.RecurrenceDays,
	}
	if update.StartDate, err = parseDate(req.StartDate); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if update.EndDate, err = parseDate(req.EndDate); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.tasks.UpdateTask(r.Context(), id, update); err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.tasks.DeleteTask(r.Context(), id); err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiTaskHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeStatus(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	history, err := s.tasks.CompletionHistory(r.Context(), id, limit)
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) apiReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.order.Reorder(r.Context(), req.IDs); err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiSetTaskPosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Position int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.order.SetPosition(r.Context(), id, req.Position); err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Display ──

func (s *Server) apiDisplayOn(w http.ResponseWriter, r *http.Request) {
	if err := s.display.PowerOn(); err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiDisplayOff(w http.ResponseWriter, r *http.Request) {
	if err := s.display.PowerOff(); err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Helpers ──

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", r.PathValue("id"))
	}
	return uint(id), nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", *raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *raw)
	}
	return &parsed, nil
}

func (s *Server) serveError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		writeStatus(w, http.StatusBadRequest, validation.Reason)
	case errors.Is(err, service.ErrTaskNotFound):
		writeStatus(w, http.StatusNotFound, "Task not found")
	default:
		s.logger.Error("request failed", slog.String("error", err.Error()))
		writeStatus(w, http.StatusInternalServerError, "internal error")
	}
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
