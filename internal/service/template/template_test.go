package template

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/darkhammer/internal/adapter/descadapter"
	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/state"
	"github.com/jgivc/darkhammer/internal/util"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTemplateStorage struct {
	mock.Mock
}

func (m *MockTemplateStorage) Scan(ctx context.Context) ([]*entity.TemplateFile, error) {
	args := m.Called(ctx)

	var files []*entity.TemplateFile
	if f, ok := args.Get(0).([]*entity.TemplateFile); ok {
		files = f
	}

	return files, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(t *testing.T, storage TemplateStorage, store *state.Store) *TemplateService {
	t.Helper()

	previewer, err := descadapter.NewDescAdapter("", "", testLogger())
	require.NoError(t, err)

	return NewTemplateService(storage, store, previewer, testLogger())
}

func TestImport(t *testing.T) {
	store := state.New()
	store.AddTemplate(entity.UploadTemplate{ID: "weekly", Name: "Old", Title: "Old title", Visibility: entity.VisibilityPrivate, Tags: []string{"old"}})

	files := []*entity.TemplateFile{
		{SourcePath: "/t/weekly.md", Template: entity.UploadTemplate{ID: "weekly", Name: "Weekly", Title: "New title", Visibility: entity.VisibilityPublic, Tags: []string{}}},
		{SourcePath: "/t/shorts.md", Template: entity.UploadTemplate{ID: "shorts", Name: "Shorts", ChannelID: util.Ptr("UC2"), Visibility: entity.VisibilityUnlisted}},
	}

	storage := new(MockTemplateStorage)
	storage.On("Scan", mock.Anything).Return(files, nil).Once()

	s := newService(t, storage, store)
	res, err := s.Import(context.Background())
	require.NoError(t, err)
	require.Equal(t, ImportResult{Added: 1, Updated: 1}, res)

	templates := store.Snapshot().UploadTemplates
	require.Len(t, templates, 2)
	require.Equal(t, "Weekly", templates[0].Name)
	require.Equal(t, "New title", templates[0].Title)
	require.Equal(t, entity.VisibilityPublic, templates[0].Visibility)
	require.Empty(t, templates[0].Tags)
	require.Equal(t, "UC2", *templates[1].ChannelID)

	storage.AssertExpectations(t)
}

func TestImportErrors(t *testing.T) {
	storage := new(MockTemplateStorage)
	storage.On("Scan", mock.Anything).Return([]*entity.TemplateFile{}, nil).Once()
	storage.On("Scan", mock.Anything).Return(nil, common.ErrImportProcessHasAlreadyStarted).Once()

	s := newService(t, storage, state.New())

	_, err := s.Import(context.Background())
	require.ErrorIs(t, err, common.ErrNoTemplatesFoundError)

	_, err = s.Import(context.Background())
	require.ErrorIs(t, err, common.ErrImportProcessHasAlreadyStarted)
}

func TestSaveAndApply(t *testing.T) {
	store := state.New()
	s := newService(t, new(MockTemplateStorage), store)
	s.newID = func() string { return "tpl-1" }

	form := entity.UploadForm{Title: "Forge day", Description: "#steel", Tags: []string{"forge"}}

	_, err := s.Save(form, "  ", nil)
	require.ErrorIs(t, err, common.ErrTemplateNameRequiredError)
	require.Empty(t, store.Snapshot().UploadTemplates)

	_, err = s.Save(entity.UploadForm{Visibility: "secret"}, "Bad", nil)
	require.ErrorIs(t, err, common.ErrBadRequestError)

	tmpl, err := s.Save(form, "Forge", util.Ptr("UC1"))
	require.NoError(t, err)
	require.Equal(t, "tpl-1", tmpl.ID)
	require.Equal(t, entity.VisibilityPublic, tmpl.Visibility)

	applied, err := s.Apply("tpl-1", entity.UploadForm{Title: "draft"})
	require.NoError(t, err)
	require.Equal(t, "Forge day", applied.Title)
	require.Equal(t, []string{"forge"}, applied.Tags)

	draft := entity.UploadForm{Title: "draft"}
	applied, err = s.Apply("missing", draft)
	require.ErrorIs(t, err, common.ErrTemplateNotFoundError)
	require.Equal(t, draft, applied)

	require.Len(t, s.List(util.Ptr("UC1")), 1)
	require.Empty(t, s.List(util.Ptr("UC2")))
	require.Len(t, s.List(nil), 1)
}

func TestUpdateAndRemove(t *testing.T) {
	store := state.New()
	store.AddTemplate(entity.UploadTemplate{ID: "a", Name: "A", Visibility: entity.VisibilityPublic})
	s := newService(t, new(MockTemplateStorage), store)

	vis := entity.VisibilityPrivate
	tmpl, err := s.Update("a", entity.TemplatePatch{Visibility: &vis})
	require.NoError(t, err)
	require.Equal(t, entity.VisibilityPrivate, tmpl.Visibility)
	require.Equal(t, "A", tmpl.Name)

	empty := ""
	_, err = s.Update("a", entity.TemplatePatch{Name: &empty})
	require.ErrorIs(t, err, common.ErrTemplateNameRequiredError)

	_, err = s.Update("missing", entity.TemplatePatch{})
	require.ErrorIs(t, err, common.ErrTemplateNotFoundError)

	require.ErrorIs(t, s.Remove("missing"), common.ErrTemplateNotFoundError)
	require.NoError(t, s.Remove("a"))
	require.Empty(t, store.Snapshot().UploadTemplates)
}

type failingPreviewer struct{}

func (failingPreviewer) Render(string) (*entity.DescriptionPreview, error) {
	return nil, errors.New("boom")
}

func TestPreview(t *testing.T) {
	s := newService(t, new(MockTemplateStorage), state.New())

	preview, err := s.Preview("Hot #Steel")
	require.NoError(t, err)
	require.Equal(t, []string{"steel"}, preview.Hashtags)

	s.previewer = failingPreviewer{}
	_, err = s.Preview("x")
	require.Error(t, err)
}
