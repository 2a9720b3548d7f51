package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
)

type listFunc[T any] func(ctx context.Context, q models.ListQuery) (*models.Page[T], error)

// serveList answers a list request, from the Redis cache when the same query was served recently.
func serveList[T any](w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, resource string, list listFunc[T]) {
	key := cache.ListKey(resource, r.URL.Query().Encode())
	if data, ok := cache.GetCached(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(data)
		return
	}

	q, err := parseListQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	page, err := list(r.Context(), q)
	if err != nil {
		writeError(w, log, resource+".list", err)
		return
	}
	if page.Rows == nil {
		page.Rows = []T{}
	}

	data, err := json.Marshal(page)
	if err != nil {
		writeError(w, log, resource+".list", err)
		return
	}
	cache.SetCached(r.Context(), key, data, cache.ListTTL)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
