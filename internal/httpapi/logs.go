package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cutroom/internal/logging"
)

const defaultLogPageSize = 200

// logsHandler pages through the in-memory log hub. With follow=1 the
// request long-polls until an event past the since cursor arrives or the
// client goes away.
func logsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub := cfg.Stream
		if hub == nil {
			WriteJSON(w, http.StatusOK, LogStreamResponse{})
			return
		}

		query := r.URL.Query()
		since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
		limit, _ := strconv.Atoi(query.Get("limit"))
		if limit <= 0 {
			limit = defaultLogPageSize
		}
		follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
		component := strings.TrimSpace(query.Get("component"))

		var (
			events []logging.LogEvent
			next   uint64
		)
		if since == 0 && !follow {
			events, next = hub.Tail(limit)
		} else {
			var err error
			events, next, err = hub.Fetch(r.Context(), since, limit, follow)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
		}

		if component != "" {
			filtered := make([]logging.LogEvent, 0, len(events))
			for _, evt := range events {
				if strings.EqualFold(component, evt.Component) {
					filtered = append(filtered, evt)
				}
			}
			events = filtered
		}

		WriteJSON(w, http.StatusOK, LogStreamResponse{Events: events, Next: next})
	}
}
