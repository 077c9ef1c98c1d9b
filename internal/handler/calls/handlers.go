package calls

import (
	"net/http"

	"github.com/neboloop/callbridge/internal/httputil"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/svc"
	"github.com/neboloop/callbridge/internal/types"
)

// ListSessionsHandler returns the live calls, oldest first.
func ListSessionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := svcCtx.Tracker.List()
		total := len(list)
		if limit := httputil.QueryInt(r, "limit", 100); limit >= 0 && limit < len(list) {
			list = list[:limit]
		}
		httputil.OkJSON(w, types.ListSessionsResponse{Sessions: list, Total: total})
	}
}

// GetTranscriptHandler returns the saved transcript of a finished call.
func GetTranscriptHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := httputil.PathVar(r, "streamSid")

		lines, err := svcCtx.DB.ListTranscript(r.Context(), sid)
		if err != nil {
			logging.Errorf("Failed to load transcript %s: %v", sid, err)
			httputil.InternalError(w, "failed to load transcript")
			return
		}
		if len(lines) == 0 {
			httputil.NotFound(w, "transcript not found")
			return
		}
		httputil.OkJSON(w, types.TranscriptResponse{StreamSID: sid, Lines: lines})
	}
}

// ListErrorsHandler returns the most recent recorded session errors and panics.
func ListErrorsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := httputil.QueryInt(r, "limit", 50)
		if limit > 500 {
			limit = 500
		}
		logs, err := svcCtx.DB.ListErrorLogs(r.Context(), limit)
		if err != nil {
			logging.Errorf("Failed to list error logs: %v", err)
			httputil.InternalError(w, "failed to list error logs")
			return
		}
		httputil.OkJSON(w, types.ListErrorsResponse{Errors: logs})
	}
}
