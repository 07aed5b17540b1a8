package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/i2pi/osc-firmware/internal/audit"
)

// handleListAudit returns paginated parameter changes, most recent first.
//
// Query parameters:
//   - address: exact address, e.g. /send/1/scaleX
//   - prefix: address prefix, e.g. /send/1/
//   - origin: requester, e.g. mqtt or udp:10.0.0.5:53211
//   - since: RFC 3339 timestamp
//   - limit: max results (default 50, max 500)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Address: q.Get("address"),
		Prefix:  q.Get("prefix"),
		Origin:  q.Get("origin"),
	}

	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
