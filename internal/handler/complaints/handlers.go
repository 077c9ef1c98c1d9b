package complaints

import (
	"errors"
	"net/http"

	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/httputil"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/svc"
)

// GetComplaintHandler returns one complaint by number, id or id prefix.
func GetComplaintHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := httputil.PathVar(r, "ref")

		c, err := svcCtx.DB.LookupComplaint(r.Context(), db.QueryRef(ref))
		switch {
		case errors.Is(err, db.ErrComplaintNotFound):
			httputil.NotFound(w, "complaint not found")
			return
		case errors.Is(err, db.ErrMissingLookupKey):
			httputil.Error(w, err)
			return
		case err != nil:
			logging.Errorf("Failed to look up complaint %q: %v", ref, err)
			httputil.InternalError(w, "failed to look up complaint")
			return
		}
		httputil.OkJSON(w, c)
	}
}
