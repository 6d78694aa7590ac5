package module

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rowkeeper/internal/modkit"
	"rowkeeper/internal/modkit/httpkit"
	"rowkeeper/internal/platform/config"
	"rowkeeper/internal/platform/metrics"
	phttp "rowkeeper/internal/platform/net/http"
	"rowkeeper/internal/services/rows/domain"
	"rowkeeper/internal/services/rows/rowstest"

	"github.com/go-chi/chi/v5"
)

func newAPI(t *testing.T) http.Handler {
	t.Helper()
	st := rowstest.Open(t)
	deps := modkit.Deps{Cfg: config.New(), Metrics: metrics.New()}.FromStore(st)
	m := New(deps, nil)

	mux := chi.NewRouter()
	httpkit.MountAPIV1(phttp.AdaptChi(mux), httpkit.CommonStack(httpkit.StackOptions{}), func(api httpkit.Router) {
		m.MountRoutes(api)
	})
	return mux
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateListDelete(t *testing.T) {
	h := newAPI(t)

	rec := call(t, h, http.MethodPost, "/api/v1/rows", `{"typeNumber":5,"typeSelector":"alpha","typeFreeText":"<i>hello</i>"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	var row domain.Row
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatal(err)
	}
	if row.ID != 1 || row.TypeFreeText != "hello" {
		t.Fatalf("row = %+v", row)
	}

	rec = call(t, h, http.MethodGet, "/api/v1/rows?page=0&size=10", "")
	var page domain.RowPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("list = %d %s", rec.Code, rec.Body)
	}
	if page.TotalCount != 1 || len(page.Data) != 1 || page.Size != 10 {
		t.Fatalf("page = %+v", page)
	}

	if rec := call(t, h, http.MethodDelete, "/api/v1/rows/1", ""); rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("delete = %d %q", rec.Code, rec.Body)
	}
	if rec := call(t, h, http.MethodDelete, "/api/v1/rows/1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", rec.Code)
	}
}

func TestRequestErrors(t *testing.T) {
	h := newAPI(t)
	cases := []struct {
		name, method, path, body string
		status                   int
		contains                 string
	}{
		{"type number below range", http.MethodPost, "/api/v1/rows", `{"typeNumber":0,"typeSelector":"a","typeFreeText":"b"}`, 400, "typeNumber must be at least 1"},
		{"type number too large", http.MethodPost, "/api/v1/rows", `{"typeNumber":2147483648,"typeSelector":"a","typeFreeText":"b"}`, 400, "typeNumber"},
		{"missing type number", http.MethodPost, "/api/v1/rows", `{"typeSelector":"a","typeFreeText":"b"}`, 400, "typeNumber"},
		{"blank selector", http.MethodPost, "/api/v1/rows", `{"typeNumber":1,"typeSelector":"   ","typeFreeText":"b"}`, 400, "typeSelector must not be blank"},
		{"free text too long", http.MethodPost, "/api/v1/rows", `{"typeNumber":1,"typeSelector":"a","typeFreeText":"` + strings.Repeat("x", 1001) + `"}`, 400, "typeFreeText must be at most 1000"},
		{"unknown field", http.MethodPost, "/api/v1/rows", `{"typeNumber":1,"typeSelector":"a","typeFreeText":"b","x":1}`, 400, "invalid JSON"},
		{"empty body", http.MethodPost, "/api/v1/rows", ``, 400, "empty body"},
		{"size too big", http.MethodGet, "/api/v1/rows?size=101", "", 400, "size must be between 1 and 100"},
		{"negative page", http.MethodGet, "/api/v1/rows?page=-1", "", 400, "page must be at least 0"},
		{"non numeric page", http.MethodGet, "/api/v1/rows?page=x", "", 400, "page must be an integer"},
		{"non numeric id", http.MethodDelete, "/api/v1/rows/abc", "", 400, "id must be an integer"},
		{"unknown export format", http.MethodGet, "/api/v1/rows/export?format=pdf", "", 400, "Unsupported export format: pdf"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := call(t, h, c.method, c.path, c.body)
			if rec.Code != c.status || !strings.Contains(rec.Body.String(), c.contains) {
				t.Fatalf("%d %s", rec.Code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), `"status_code":400`) {
				t.Fatalf("errors use the envelope: %s", rec.Body)
			}
		})
	}
}

func TestExportAttachment(t *testing.T) {
	h := newAPI(t)
	for i := 0; i < 3; i++ {
		call(t, h, http.MethodPost, "/api/v1/rows", `{"typeNumber":1,"typeSelector":"a,b","typeFreeText":"t"}`)
	}

	cases := []struct{ format, ctype, ext string }{
		{"", "text/csv", ".csv"},
		{"JSON", "application/json", ".json"},
		{"xml", "application/xml", ".xml"},
	}
	for _, c := range cases {
		rec := call(t, h, http.MethodGet, "/api/v1/rows/export?format="+c.format, "")
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != c.ctype {
			t.Fatalf("%q: %d %s", c.format, rec.Code, rec.Header().Get("Content-Type"))
		}
		cd := rec.Header().Get("Content-Disposition")
		if !strings.HasPrefix(cd, `form-data; name="attachment"; filename="export_`) || !strings.HasSuffix(cd, c.ext+`"`) {
			t.Fatalf("disposition = %q", cd)
		}
	}

	rec := call(t, h, http.MethodGet, "/api/v1/rows/export?format=csv", "")
	if lines := strings.Count(rec.Body.String(), "\n"); lines != 4 {
		t.Fatalf("csv lines = %d\n%s", lines, rec.Body)
	}
}
