package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/engine"
	"github.com/Veraticus/sortit/internal/guide"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/rules"
	"github.com/Veraticus/sortit/internal/testutil"
)

func TestHistory_Paging(t *testing.T) {
	store := testutil.SetupHistoryDB(t,
		testutil.NewResultBuilder().
			With(model.Recyclable, 3).
			With(model.Hazardous, 2).
			Build()...,
	)

	eng, err := engine.New(engine.Config{Rules: rules.Default(), Guides: guide.Default(), Logger: common.DiscardLogger()})
	require.NoError(t, err)
	srv, err := New(Config{Engine: eng, History: store, Logger: common.DiscardLogger()})
	require.NoError(t, err)

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{query: "", wantIDs: []string{"result-004", "result-003", "result-002", "result-001", "result-000"}},
		{query: "?limit=2", wantIDs: []string{"result-004", "result-003"}},
		{query: "?limit=2&offset=2", wantIDs: []string{"result-002", "result-001"}},
		{query: "?category=hazardous", wantIDs: []string{"result-004", "result-003"}},
		{query: "?category=deposit", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decode[historyResponse](t, w)
			ids := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), resp.Count)
		})
	}
}
