package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jgivc/darkhammer/internal/adapter/descadapter"
	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/query"
	"github.com/jgivc/darkhammer/internal/service/mockdata"
	"github.com/jgivc/darkhammer/internal/service/template"
	"github.com/jgivc/darkhammer/internal/state"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

type stubStorage struct {
	files []*entity.TemplateFile
	err   error
}

func (s *stubStorage) Scan(ctx context.Context) ([]*entity.TemplateFile, error) {
	return s.files, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type testServer struct {
	t       *testing.T
	store   *state.Store
	storage *stubStorage
	mux     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := testLogger()
	store := state.New()

	previewer, err := descadapter.NewDescAdapter("", "", log)
	require.NoError(t, err)

	storage := &stubStorage{}
	data := mockdata.NewService(nil, log, mockdata.WithDelay(0), mockdata.WithClock(func() time.Time { return testNow }))

	ids := 0
	mux := NewRouter(Deps{
		Store:     store,
		Templates: template.NewTemplateService(storage, store, previewer, log),
		Data:      data,
		Now:       func() time.Time { return testNow },
		NewID: func() string {
			ids++

			return string(rune('0' + ids))
		},
	}, log)

	return &testServer{t: t, store: store, storage: storage, mux: mux}
}

func (s *testServer) do(method, path string, body any, out any) int {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}

	return rec.Code
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)

	var session sessionResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/logout", nil, &session))
	require.False(t, session.IsAuthenticated)

	for _, path := range []string{"/api/state", "/api/channels", "/api/window", "/api/templates", "/api/data/dashboard"} {
		require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, nil, nil), path)
	}

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/session", nil, &session))
	require.False(t, session.IsAuthenticated)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/login", map[string]string{"userName": "Eve"}, &session))
	require.Equal(t, sessionResponse{IsAuthenticated: true, UserName: "Eve"}, session)

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/state", nil, nil))
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)

	var snap entity.Snapshot
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/theme", map[string]string{"theme": "light"}, &snap))
	require.Equal(t, entity.ThemeLight, snap.Theme)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/theme", map[string]string{"theme": "blue"}, nil))
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/theme", map[string]string{"color": "light"}, nil))

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/sidebar/toggle", nil, nil))
	require.True(t, s.store.Snapshot().SidebarCollapsed)

	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/user", map[string]string{"userName": " "}, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/user", map[string]string{"userName": "Smith"}, nil))
	require.Equal(t, "Smith", s.store.Snapshot().UserName)

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/youtube-key", map[string]string{"youtubeApiKey": "k-1"}, nil))
	require.Equal(t, "k-1", *s.store.Snapshot().YouTubeAPIKey)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/youtube-key", map[string]any{"youtubeApiKey": nil}, nil))
	require.Nil(t, s.store.Snapshot().YouTubeAPIKey)
}

func TestChannels(t *testing.T) {
	s := newTestServer(t)

	var channel entity.Channel
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/channels/UCdh-main-0001/connect", nil, &channel))
	require.True(t, channel.IsConnected)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/channels/UCnope/connect", nil, nil))

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/channels", map[string]string{"title": "Side project"}, &channel))
	require.Equal(t, "manual-1", channel.ID)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/channels", map[string]string{"id": "x"}, nil))

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/channels/manual-1/toggle", nil, &channel))
	require.False(t, channel.IsConnected)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/channels/missing/toggle", nil, nil))

	var list channelsResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/channels", nil, &list))
	require.Len(t, list.Channels, 2)
	require.Len(t, list.Connected, 1)

	var active query.Active
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/channels/active", nil, &active))
	require.True(t, active.All)

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/channels/selected", map[string]string{"channelId": "UCdh-main-0001"}, &active))
	require.False(t, active.All)
	require.Equal(t, "UCdh-main-0001", active.Channel.ID)

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/channels/selected", map[string]string{"channelId": "ghost"}, &active))
	require.True(t, active.All)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/channels/manual-1", nil, nil))
	require.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/channels/manual-1", nil, nil))
}

func TestSelection(t *testing.T) {
	s := newTestServer(t)

	var res selectionResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/selection/A/toggle", nil, &res))
	require.Equal(t, []string{"A"}, res.IDs)
	require.Equal(t, "A", *res.SelectedChannelID)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/selection/B/toggle", nil, &res))
	require.Nil(t, res.SelectedChannelID)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/selection/A/toggle", nil, &res))
	require.Equal(t, "B", *res.SelectedChannelID)
	require.Equal(t, "B", *s.store.Snapshot().SelectedChannelID)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/selection/B/toggle", nil, &res))
	require.Empty(t, res.IDs)
	require.Nil(t, s.store.Snapshot().SelectedChannelID)
}

func TestDateRange(t *testing.T) {
	s := newTestServer(t)

	var res windowResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/window", nil, &res))
	require.Equal(t, entity.DateRange28d, res.DateRange)
	require.Equal(t, testNow.Add(-28*24*time.Hour), res.Window.Start.UTC())
	require.Nil(t, res.DayCount)

	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/date-range", map[string]string{"dateRange": "1y"}, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/date-range", map[string]string{"dateRange": "all"}, &res))
	require.True(t, res.Window.Unbounded())

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/date-range", map[string]string{"dateRange": "custom"}, &res))
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/custom-range/pick", map[string]any{}, nil))

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/custom-range/pick", map[string]any{"date": "2024-05-10T00:00:00Z"}, &res))
	require.Nil(t, res.DayCount)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/custom-range/pick", map[string]any{"date": "2024-05-03T00:00:00Z"}, &res))
	require.Equal(t, 8, *res.DayCount)
	require.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), res.Window.Start.UTC())

	body := map[string]any{"startDate": "2024-05-10T00:00:00Z", "endDate": "2024-05-01T00:00:00Z"}
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/custom-range", body, nil))

	body = map[string]any{"startDate": "2024-05-01T00:00:00Z", "endDate": "2024-05-01T00:00:00Z"}
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/custom-range", body, &res))
	require.Equal(t, 1, *res.DayCount)
}

func TestTemplates(t *testing.T) {
	s := newTestServer(t)

	var tmpl entity.UploadTemplate
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/templates", map[string]any{"name": ""}, nil))

	req := map[string]any{
		"name":      "Weekly",
		"channelId": "UC1",
		"form":      map[string]any{"title": "Weekly #1", "tags": []string{"weekly"}, "visibility": "unlisted"},
	}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/templates", req, &tmpl))
	id := tmpl.ID
	require.NotEmpty(t, id)

	var list []entity.UploadTemplate
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/templates?channelId=UC2", nil, &list))
	require.Empty(t, list)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/templates?channelId=UC1", nil, &list))
	require.Len(t, list, 1)

	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/api/templates/"+id, map[string]any{"channelId": nil, "title": "Weekly #2"}, &tmpl))
	require.Nil(t, tmpl.ChannelID)
	require.Equal(t, "Weekly #2", tmpl.Title)
	require.Equal(t, entity.VisibilityUnlisted, tmpl.Visibility)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/api/templates/missing", map[string]any{"title": "x"}, nil))

	var form entity.UploadForm
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/templates/"+id+"/apply", entity.UploadForm{Title: "draft"}, &form))
	require.Equal(t, "Weekly #2", form.Title)
	require.Equal(t, []string{"weekly"}, form.Tags)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/templates/missing/apply", nil, nil))

	var preview entity.DescriptionPreview
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/templates/preview", map[string]string{"description": "Forge #Day"}, &preview))
	require.Equal(t, []string{"day"}, preview.Hashtags)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/templates/"+id, nil, nil))
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/templates/"+id, nil, nil))
}

func TestImportTemplates(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/templates/import", nil, nil))

	s.storage.err = common.ErrImportProcessHasAlreadyStarted
	require.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/templates/import", nil, nil))

	s.storage.err = nil
	s.storage.files = []*entity.TemplateFile{
		{SourcePath: "/t/a.md", Template: entity.UploadTemplate{ID: "a", Name: "A", Visibility: entity.VisibilityPublic}},
	}

	var res template.ImportResult
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/templates/import", nil, &res))
	require.Equal(t, template.ImportResult{Added: 1}, res)
}

func TestData(t *testing.T) {
	s := newTestServer(t)

	var channels []entity.Channel
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/data/channels", nil, &channels))
	require.Len(t, channels, 3)

	id := "UCdh-main-0001"
	s.store.SetSelectedChannelID(&id)

	var uploads []entity.Upload
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/data/uploads", nil, &uploads))
	require.NotEmpty(t, uploads)
	for _, u := range uploads {
		require.Equal(t, id, u.ChannelID)
	}

	var all []entity.Upload
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/data/uploads?channelId=", nil, &all))
	require.Greater(t, len(all), len(uploads))

	var a entity.Analytics
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/data/analytics", nil, &a))
	require.Equal(t, id, *a.ChannelID)
	require.Equal(t, entity.DateRange28d, a.DateRange)
	require.Len(t, a.DailyViews, 28)

	var comments []entity.Comment
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/data/comments", nil, &comments))

	var d entity.Dashboard
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/data/dashboard", nil, &d))
	require.Len(t, d.Channels, 3)
	require.Equal(t, len(uploads), len(d.Uploads))
}

// removingStore drops the channel while toggling it, as a concurrent delete would.
type removingStore struct {
	*state.Store
}

func (s removingStore) ToggleChannelConnection(id string) {
	s.Store.ToggleChannelConnection(id)
	s.Store.RemoveChannel(id)
}

func TestToggleChannelRemovedMeanwhile(t *testing.T) {
	store := state.New()
	store.AddChannel(entity.Channel{ID: "UC1", IsConnected: true})

	h := NewToggleChannelHandler(removingStore{store}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/channels/UC1/toggle", nil)
	req.SetPathValue("id", "UC1")
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() { h.ServeHTTP(rec, req) })
	require.Equal(t, http.StatusNotFound, rec.Code)
}
