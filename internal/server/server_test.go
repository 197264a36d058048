package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

// memStore is an in-memory builder.Store holding one CV.
type memStore struct {
	mu       sync.Mutex
	id       uuid.UUID
	bundle   records.Bundle
	loadErrs map[types.Section]error
	saved    map[types.Section]*types.CV
}

func newMemStore(id uuid.UUID) *memStore {
	return &memStore{
		id: id,
		bundle: records.Bundle{
			CV: records.CV{ID: id.String()},
			PersonalInfo: &records.PersonalInfo{
				FirstName:  records.Ptr("Jane"),
				MiddleName: records.Ptr("Q"),
				LastName:   records.Ptr("Doe"),
				Email:      records.Ptr("jane@example.org"),
			},
			Awards: []records.Award{{Title: records.Ptr("Best Paper")}},
		},
		loadErrs: map[types.Section]error{},
		saved:    map[types.Section]*types.CV{},
	}
}

func (m *memStore) GetCV(_ context.Context, id uuid.UUID) (*records.CV, error) {
	if id != m.id {
		return nil, fmt.Errorf("cv %s: %w", id, db.ErrNotFound)
	}
	root := m.bundle.CV
	return &root, nil
}

func (m *memStore) LoadSection(_ context.Context, _ uuid.UUID, section types.Section, dst *records.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadErrs[section]; err != nil {
		return err
	}
	switch section {
	case types.SectionPersonalInfo:
		dst.PersonalInfo = m.bundle.PersonalInfo
	case types.SectionAwards:
		dst.Awards = m.bundle.Awards
	}
	return nil
}

func (m *memStore) SaveSection(_ context.Context, _ uuid.UUID, section types.Section, doc *types.CV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[section] = doc
	return nil
}

func (m *memStore) ListCountries(_ context.Context) ([]types.Country, error) {
	return []types.Country{{Code: "DE", Name: "Germany", Nationality: "German"}}, nil
}

// stubCVs is the real service with injectable save failures.
type stubCVs struct {
	*builder.Service
	saveErr error
}

func (s *stubCVs) SaveSection(ctx context.Context, cvID uuid.UUID, section types.Section, doc *types.CV) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Service.SaveSection(ctx, cvID, section, doc)
}

type fakeExporter struct {
	mu   sync.Mutex
	err  error
	opts []export.Options
}

func (e *fakeExporter) PDF(_ context.Context, _ *rendering.Document, opts export.Options) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.opts = append(e.opts, opts)
	return []byte("%PDF-1.4 fake"), nil
}

type fakeLibrary struct {
	mu        sync.Mutex
	cvs       []db.CVSummary
	skills    []types.Skill
	companies []types.Company
}

func (f *fakeLibrary) CreateCV(_ context.Context, title string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.cvs = append(f.cvs, db.CVSummary{ID: id, Title: title})
	return id, nil
}

func (f *fakeLibrary) ListCVs(_ context.Context, limit int) ([]db.CVSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cvs) > limit {
		return f.cvs[:limit], nil
	}
	return f.cvs, nil
}

func (f *fakeLibrary) DeleteCV(_ context.Context, cvID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cv := range f.cvs {
		if cv.ID == cvID {
			f.cvs = append(f.cvs[:i], f.cvs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cv %s: %w", cvID, db.ErrNotFound)
}

func (f *fakeLibrary) ListCountries(_ context.Context) ([]types.Country, error) {
	return []types.Country{{Code: "DE", Name: "Germany", Nationality: "German"}, {Code: "FR", Name: "France", Nationality: "French"}}, nil
}

func (f *fakeLibrary) ListSkills(_ context.Context) ([]types.Skill, error) {
	return f.skills, nil
}

func (f *fakeLibrary) CreateSkill(_ context.Context, s types.Skill) (*types.Skill, error) {
	s.ID = uuid.New()
	f.skills = append(f.skills, s)
	return &s, nil
}

func (f *fakeLibrary) UpdateSkill(_ context.Context, s types.Skill) (*types.Skill, error) {
	for i, existing := range f.skills {
		if existing.ID == s.ID {
			f.skills[i] = s
			return &s, nil
		}
	}
	return nil, fmt.Errorf("skill %s: %w", s.ID, db.ErrNotFound)
}

func (f *fakeLibrary) DeleteSkill(_ context.Context, id uuid.UUID) error {
	return fmt.Errorf("skill %s: %w", id, db.ErrNotFound)
}

func (f *fakeLibrary) ListCompanies(_ context.Context) ([]types.Company, error) {
	return f.companies, nil
}

func (f *fakeLibrary) CreateCompany(_ context.Context, c types.Company) (*types.Company, error) {
	c.ID = uuid.New()
	f.companies = append(f.companies, c)
	return &c, nil
}

func (f *fakeLibrary) UpdateCompany(_ context.Context, c types.Company) (*types.Company, error) {
	for _, existing := range f.companies {
		if existing.ID != c.ID && db.NormalizeName(existing.Name) == db.NormalizeName(c.Name) {
			return nil, fmt.Errorf("company %q: %w", c.Name, db.ErrConflict)
		}
	}
	for i, existing := range f.companies {
		if existing.ID == c.ID {
			f.companies[i] = c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("company %s: %w", c.ID, db.ErrNotFound)
}

func (f *fakeLibrary) DeleteCompany(_ context.Context, id uuid.UUID) error {
	for i, existing := range f.companies {
		if existing.ID == id {
			f.companies = append(f.companies[:i], f.companies[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("company %s: %w", id, db.ErrNotFound)
}

type testServer struct {
	*Server
	id       uuid.UUID
	store    *memStore
	cvs      *stubCVs
	exporter *fakeExporter
	library  *fakeLibrary
}

func newTestServer(t *testing.T, rl *ratelimit.Config) *testServer {
	t.Helper()
	id := uuid.New()
	store := newMemStore(id)
	exp := &fakeExporter{}
	svc := builder.New(builder.Config{Store: store, Exporter: exp, RetryDelay: time.Millisecond})
	cvs := &stubCVs{Service: svc}
	lib := &fakeLibrary{}
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s := New(Config{Port: 0, RateLimit: rl}, cvs, lib, nil)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, id: id, store: store, cvs: cvs, exporter: exp, library: lib}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodOptions, "/cvs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCreateAndListCVs(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/cvs", `{"title":"  Backend roles  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id, err := uuid.Parse(decodeBody(t, w)["id"].(string))
	require.NoError(t, err)

	w = ts.do(http.MethodPost, "/cvs", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodGet, "/cvs?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.EqualValues(t, 1, resp["count"])
	assert.Equal(t, id, ts.library.cvs[0].ID)
	assert.Equal(t, "Backend roles", ts.library.cvs[0].Title)
}

func TestCreateCV_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/cvs", `{invalid json}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["error"])
}

func TestDeleteCV(t *testing.T) {
	ts := newTestServer(t, nil)
	id, _ := ts.library.CreateCV(context.Background(), "x")

	w := ts.do(http.MethodDelete, "/cvs/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodDelete, "/cvs/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCV(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		CV     types.CV         `json:"cv"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Jane", resp.CV.PersonalInfo.FirstName)
	require.Len(t, resp.CV.Awards, 1)
	assert.Empty(t, resp.Errors)
}

func TestGetCV_SectionFailureIsReported(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.store.loadErrs[types.SectionAwards] = errors.New("connection reset")

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	errs := resp["errors"].([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, "awards", first["section"])
	assert.Equal(t, true, first["retryable"])
	assert.Contains(t, first["error"], "connection reset")

	cv := resp["cv"].(map[string]any)
	assert.Empty(t, cv["awards"])
	assert.Equal(t, "Jane", cv["personalInfo"].(map[string]any)["firstName"])
}

func TestGetCV_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/cvs/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSections(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/sections", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sections []types.SectionStatus `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sections, len(types.Sections()))
	for _, s := range resp.Sections {
		switch s.Section {
		case types.SectionPersonalInfo, types.SectionAwards:
			assert.True(t, s.Complete, s.Section)
		default:
			assert.False(t, s.Complete, s.Section)
		}
	}
}

func TestSaveSection(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `[{
		"company": "Acme",
		"positions": [{
			"title": "Engineer",
			"startDate": "2019-01-01",
			"endDate": "2021-06-01",
			"current": true,
			"responsibilities": ["Built things"]
		}]
	}]`

	w := ts.do(http.MethodPut, "/cvs/"+ts.id.String()+"/sections/work_experience", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "work_experience", resp["section"])
	assert.EqualValues(t, 1, resp["entries"])

	saved := ts.store.saved[types.SectionWorkExperience]
	require.NotNil(t, saved)
	require.Len(t, saved.WorkExperience, 1)
	pos := saved.WorkExperience[0].Positions[0]
	assert.True(t, pos.EndDate.IsZero(), "current entries are saved without an end date")
	assert.Equal(t, []string{"Built things"}, pos.Responsibilities.Values())
}

func TestSaveSection_PlaceholderResponsibilitiesNotRendered(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `[{
		"company": "Acme",
		"positions": [{
			"title": "Engineer",
			"startDate": "2019-01-01",
			"current": true,
			"responsibilities": ["", "Led team"],
			"achievements": ["Shipped v2"]
		}]
	}]`

	w := ts.do(http.MethodPut, "/cvs/"+ts.id.String()+"/sections/work_experience", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	saved := ts.store.saved[types.SectionWorkExperience]
	require.NotNil(t, saved)
	pos := saved.WorkExperience[0].Positions[0]
	assert.Equal(t, types.ListEmpty, pos.Responsibilities.State)
	assert.False(t, pos.Responsibilities.HasItems())

	doc, err := rendering.Render(saved, visibility.Defaults(), rendering.DefaultOptions())
	require.NoError(t, err)
	out, err := doc.HTML()
	require.NoError(t, err)
	page, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 0, page.Find(".list-block.responsibilities").Length())
	assert.NotContains(t, out, "Led team")
	assert.Equal(t, 1, page.Find(".list-block.achievements").Length())
}

func TestSaveSection_PersonalInfoObject(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPut, "/cvs/"+ts.id.String()+"/sections/personal_info", `{"firstName":"Ada","lastName":"Lovelace"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada", ts.store.saved[types.SectionPersonalInfo].PersonalInfo.FirstName)
}

func TestSaveSection_BadRequests(t *testing.T) {
	ts := newTestServer(t, nil)
	base := "/cvs/" + ts.id.String() + "/sections/"

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown section", base + "hobbies", `[]`, http.StatusBadRequest},
		{"invalid json", base + "awards", `{not json`, http.StatusBadRequest},
		{"wrong shape", base + "awards", `{"title":"x"}`, http.StatusBadRequest},
		{"bad id", "/cvs/xyz/sections/awards", `[]`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
	assert.Empty(t, ts.store.saved)
}

func TestSaveSection_ValidationError(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPut, "/cvs/"+ts.id.String()+"/sections/languages", `[{"name":"German","proficiency":"Expert"}]`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "languages", resp["section"])
	assert.Equal(t, false, resp["retryable"])
	fields := resp["fields"].([]any)
	require.NotEmpty(t, fields)
	assert.Equal(t, "proficiency", fields[0].(map[string]any)["rule"])
}

func TestSaveSection_InProgress(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.cvs.saveErr = &builder.SectionError{Section: types.SectionAwards, Op: builder.OpSave, Err: builder.ErrSaveInProgress}

	w := ts.do(http.MethodPut, "/cvs/"+ts.id.String()+"/sections/awards", `[]`)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "awards", resp["section"])
	assert.Equal(t, true, resp["retryable"])
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/preview?showMiddleName=true&showEmail=false&utm=x", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Empty(t, w.Header().Get("X-Section-Errors"))

	dom, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Contains(t, dom.Find("h1").First().Text(), "Jane Q Doe")
	assert.NotContains(t, dom.Text(), "jane@example.org")
}

func TestPreview_SectionErrorsHeader(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.store.loadErrs[types.SectionAwards] = errors.New("timeout")

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "awards", w.Header().Get("X-Section-Errors"))
	assert.NotContains(t, w.Body.String(), "Best Paper")
}

func TestPreview_BadFlagValue(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/preview?showEmail=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/export.pdf?page=letter&landscape=true&margin=5", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=Jane_Doe_CV.pdf`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	require.Len(t, ts.exporter.opts, 1)
	got := ts.exporter.opts[0]
	assert.Equal(t, "LETTER", got.PageSize)
	assert.True(t, got.Landscape)
	assert.InDelta(t, 5.0, got.MarginMM, 0.001)
}

func TestExport_InvalidOptions(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, q := range []string{"margin=99", "page=B7", "landscape=sideways", "scale=abc"} {
		w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/export.pdf?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Empty(t, ts.exporter.opts)
}

func TestExport_Failure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.exporter.err = errors.New("chrome crashed")

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/export.pdf", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["retryable"])
}

func TestPreviewImage_Unsupported(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/preview.jpg", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLibraryEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/countries", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["count"])

	w = ts.do(http.MethodPost, "/skills", `{"name":"  Go ","domain":"Programming"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Go", decodeBody(t, w)["name"])

	w = ts.do(http.MethodPost, "/skills", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/skills", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])

	w = ts.do(http.MethodDelete, "/skills/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/companies", `{"name":"Acme","industry":"Finance"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/companies", `{"industry":"Finance"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/companies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])
}

func TestLibraryUpdateAndDelete(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/skills", `{"name":"Go"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	skillID := decodeBody(t, w)["id"].(string)

	w = ts.do(http.MethodPut, "/skills/"+skillID, `{"name":" Golang ","domain":"Programming"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Golang", body["name"])
	assert.Equal(t, skillID, body["id"])

	w = ts.do(http.MethodPut, "/skills/"+skillID, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPut, "/skills/"+uuid.New().String(), `{"name":"Rust"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodPut, "/skills/not-a-uuid", `{"name":"Rust"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/companies", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	acmeID := decodeBody(t, w)["id"].(string)
	w = ts.do(http.MethodPost, "/companies", `{"name":"Globex"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPut, "/companies/"+acmeID, `{"name":"Acme Corp","industry":"Finance"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Acme Corp", decodeBody(t, w)["name"])

	w = ts.do(http.MethodPut, "/companies/"+acmeID, `{"name":"GLOBEX"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(http.MethodPut, "/companies/"+acmeID, `{"industry":"Finance"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodDelete, "/companies/"+acmeID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodDelete, "/companies/"+acmeID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/companies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])
}

func TestRateLimit_Export(t *testing.T) {
	ts := newTestServer(t, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/cvs/*/export.pdf", Method: http.MethodGet, Limit: 1, Window: time.Hour, Burst: 1},
		},
	})

	w := ts.do(http.MethodGet, "/cvs/"+ts.id.String()+"/export.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = ts.do(http.MethodGet, "/cvs/"+uuid.New().String()+"/export.pdf", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody(t, w)["error"])

	w = ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractClientID(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ts.extractClientID(req))

	req.RemoteAddr = "garbage"
	assert.Equal(t, "garbage", ts.extractClientID(req))
}
