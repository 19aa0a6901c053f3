package notification

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/services/panel-api/auth"
	"github.com/NordCoder/netpanel/internal/services/panel-api/respond"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Server struct {
	log *zap.Logger
	uc  *Usecase
}

func NewServer(log *zap.Logger, uc *Usecase) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log.With(zap.String("component", "notification.http")), uc: uc}
}

// Register mounts the notification routes on mux.
func (s *Server) Register(mux *runtime.ServeMux) error {
	routes := []struct {
		method, pattern string
		h               runtime.HandlerFunc
	}{
		{http.MethodGet, "/api/notifications", s.list},
		{http.MethodGet, "/api/notifications/{id}", s.get},
		{http.MethodPatch, "/notifications/{id}/{action}", s.transition},
		{http.MethodPut, "/notifications", s.create},
		{http.MethodDelete, "/notifications/{id}", s.delete},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.h); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) logger(r *http.Request) *zap.Logger {
	l := obs.WithTrace(r.Context(), s.log)
	if sub, ok := auth.SubjectFromCtx(r.Context()); ok {
		l = l.With(zap.String("subject", sub))
	}
	return l
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.uc.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond.Data(w, items)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request, p map[string]string) {
	id, ok := parseID(p["id"])
	if !ok {
		respond.Error(w, http.StatusNotFound, "No such notification.")
		return
	}
	n, err := s.uc.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond.Data(w, n)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, p map[string]string) {
	id, ok := parseID(p["id"])
	if !ok {
		respond.Error(w, http.StatusNotFound, "No such notification.")
		return
	}
	s.logger(r).Info("notification transition request", zap.Int64("id", id), zap.String("action", p["action"]))

	n, err := s.uc.Transition(r.Context(), id, p["action"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond.OK(w, n)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d, err := decodeDraft(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger(r).Info("notification create request", zap.String("title", d.Title), zap.Bool("sticky", d.Sticky))

	n, err := s.uc.Create(r.Context(), d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond.OK(w, n)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request, p map[string]string) {
	id, ok := parseID(p["id"])
	if !ok {
		respond.Error(w, http.StatusNotFound, "No such notification.")
		return
	}
	s.logger(r).Info("notification delete request", zap.Int64("id", id))

	if err := s.uc.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respond.OK(w, nil)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.JSON(w, http.StatusUnprocessableEntity, verr.Fields)
	case errors.Is(err, notification.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "No such notification.")
	case errors.Is(err, notification.ErrUnknownAction):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		s.logger(r).Error("notification request failed", zap.String("path", r.URL.Path), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Internal error.")
	}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

type draftJSON struct {
	Title  string          `json:"title"`
	Body   string          `json:"body"`
	Source string          `json:"source"`
	Sticky json.RawMessage `json:"sticky"`
}

// decodeDraft reads a JSON or form encoded create request. sticky accepts
// booleans as well as the form spellings "1", "on", "true".
func decodeDraft(r *http.Request) (notification.Draft, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var in draftJSON
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return notification.Draft{}, errors.New("malformed JSON body")
		}
		sticky := strings.Trim(string(in.Sticky), `"`)
		return notification.Draft{Title: in.Title, Body: in.Body, Source: in.Source, Sticky: truthy(sticky)}, nil
	}

	if err := r.ParseForm(); err != nil {
		return notification.Draft{}, errors.New("malformed form body")
	}
	return notification.Draft{
		Title:  r.PostForm.Get("title"),
		Body:   r.PostForm.Get("body"),
		Source: r.PostForm.Get("source"),
		Sticky: truthy(r.PostForm.Get("sticky")),
	}, nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
