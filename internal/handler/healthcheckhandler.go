package handler

import (
	"net/http"
	"time"

	"github.com/neboloop/callbridge/internal/httputil"
	"github.com/neboloop/callbridge/internal/svc"
	"github.com/neboloop/callbridge/internal/types"
)

func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.HealthResponse{
			Status:         "healthy",
			Version:        svcCtx.Version,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			ActiveSessions: svcCtx.Tracker.Count(),
		})
	}
}

// IndexHandler answers the root path so the provider's reachability probe succeeds.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("callbridge media stream server\n"))
}
