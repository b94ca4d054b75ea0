package extlist

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

type optionsResponse struct {
	Data []model.Option `json:"data"`
}

// Handler serves one list over HTTP as JSON options, for form clients that
// fetch external lists lazily. It answers GET and HEAD; a query parameter
// filters by label or value substring and limit caps the result size.
func Handler(provider Provider, listID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		options, err := provider.ListItems(r.Context(), listID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
		limit := parseLimit(r.URL.Query().Get("limit"))

		results := make([]model.Option, 0, len(options))
		for _, option := range options {
			if query != "" &&
				!strings.Contains(strings.ToLower(option.Label), query) &&
				!strings.Contains(strings.ToLower(option.Value), query) {
				continue
			}
			results = append(results, option)
			if limit > 0 && len(results) == limit {
				break
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(optionsResponse{Data: results})
	})
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
