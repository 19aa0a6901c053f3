package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/services/panel-api/respond"
	"go.uber.org/zap"
)

const (
	HeaderCSRF     = "X-CSRF-TOKEN"
	QueryToken     = "token"
	Anonymous      = "anonymous"
	StatusCSRFFail = 419
)

type Config struct {
	Enable bool
	CSRF   bool
	Secret []byte
	// Public paths skip the bearer check.
	Public []string
}

type ctxKey int

const subjectKey ctxKey = 1

func SubjectFromCtx(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// Middleware authenticates the bearer token (Authorization header or ?token=)
// and, for unsafe methods, checks the X-CSRF-TOKEN header.
func Middleware(cfg Config, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "auth"))
	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			subject := Anonymous
			if cfg.Enable {
				s, err := ParseSubject(cfg.Secret, bearer(r))
				if err != nil {
					obs.WithTrace(ctx, log).Debug("unauthenticated request",
						zap.String("path", r.URL.Path), zap.Error(err))
					respond.Error(w, http.StatusUnauthorized, "Unauthenticated.")
					return
				}
				subject = s
			}

			if cfg.CSRF && !safeMethod(r.Method) && !validCSRF(cfg.Secret, subject, r.Header.Get(HeaderCSRF)) {
				obs.WithTrace(ctx, log).Info("csrf mismatch",
					zap.String("subject", subject), zap.String("method", r.Method), zap.String("path", r.URL.Path))
				respond.JSON(w, StatusCSRFFail, map[string]string{"message": "CSRF token mismatch."})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(ctx, subject)))
		})
	}
}

// CSRFHandler answers with the token the caller must echo in X-CSRF-TOKEN.
func CSRFHandler(secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFromCtx(r.Context())
		if !ok {
			subject = Anonymous
		}
		respond.JSON(w, http.StatusOK, map[string]string{"token": CSRFToken(secret, subject)})
	}
}

func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return r.URL.Query().Get(QueryToken)
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
