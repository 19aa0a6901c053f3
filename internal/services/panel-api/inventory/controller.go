package inventory

import (
	"net/http"
	"strconv"

	"github.com/NordCoder/netpanel/internal/domain/inventory"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/services/panel-api/respond"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Server struct {
	log  *zap.Logger
	repo inventory.Repo
}

func NewServer(log *zap.Logger, repo inventory.Repo) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log.With(zap.String("component", "inventory.http")), repo: repo}
}

func (s *Server) Register(mux *runtime.ServeMux) error {
	return mux.HandlePath(http.MethodGet, "/api/inventory", s.list)
}

// list answers {"total": N, "data": [...]} for ?limit=&offset=.
func (s *Server) list(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	limit := intParam(q.Get("limit"), DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := intParam(q.Get("offset"), 0)

	items, total, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		obs.WithTrace(r.Context(), s.log).Error("inventory list failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if items == nil {
		items = []*inventory.Item{}
	}
	respond.JSON(w, http.StatusOK, inventory.Page{Total: total, Data: items})
}

func intParam(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
