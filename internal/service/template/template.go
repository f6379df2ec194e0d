package template

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/query"
)

const serviceName = "template"

type TemplateStorage interface {
	Scan(ctx context.Context) ([]*entity.TemplateFile, error)
}

type TemplateStore interface {
	Snapshot() entity.Snapshot
	AddTemplate(tmpl entity.UploadTemplate)
	UpdateTemplate(id string, patch entity.TemplatePatch)
	RemoveTemplate(id string)
}

type Previewer interface {
	Render(description string) (*entity.DescriptionPreview, error)
}

type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

type TemplateService struct {
	storage   TemplateStorage
	store     TemplateStore
	previewer Previewer
	newID     func() string
	log       *slog.Logger
}

func NewTemplateService(storage TemplateStorage, store TemplateStore, previewer Previewer, log *slog.Logger) *TemplateService {
	return &TemplateService{
		storage:   storage,
		store:     store,
		previewer: previewer,
		newID:     uuid.NewString,
		log:       log.With(slog.String("service", serviceName)),
	}
}

// Import loads the template files into the store. Templates already present are overwritten by id.
func (s *TemplateService) Import(ctx context.Context) (ImportResult, error) {
	var res ImportResult

	files, err := s.storage.Scan(ctx)
	if err != nil {
		s.log.Error("Cannot scan", slog.Any("error", err))

		return res, fmt.Errorf("cannot scan template storage: %w", err)
	}

	if len(files) < 1 {
		s.log.Warn("Cannot find templates")

		return res, common.ErrNoTemplatesFoundError
	}

	existing := s.store.Snapshot().UploadTemplates
	for _, tf := range files {
		tmpl := tf.Template
		if slices.ContainsFunc(existing, func(t entity.UploadTemplate) bool { return t.ID == tmpl.ID }) {
			s.store.UpdateTemplate(tmpl.ID, fullPatch(tmpl))
			res.Updated++

			continue
		}

		s.store.AddTemplate(tmpl)
		existing = append(existing, tmpl)
		res.Added++
	}

	s.log.Info("Templates imported", slog.Int("added", res.Added), slog.Int("updated", res.Updated))

	return res, nil
}

// Save stores the form as a new template.
func (s *TemplateService) Save(form entity.UploadForm, name string, channelID *string) (entity.UploadTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.UploadTemplate{}, common.ErrTemplateNameRequiredError
	}

	if form.Visibility == "" {
		form.Visibility = entity.VisibilityPublic
	}

	if _, err := entity.ParseVisibility(string(form.Visibility)); err != nil {
		return entity.UploadTemplate{}, fmt.Errorf("%w: %w", common.ErrBadRequestError, err)
	}

	tmpl := entity.UploadTemplate{
		ID:            s.newID(),
		ChannelID:     channelID,
		Name:          name,
		Title:         form.Title,
		Description:   form.Description,
		Tags:          append([]string{}, form.Tags...),
		Visibility:    form.Visibility,
		ScheduledDate: form.ScheduledDate,
	}
	tmpl = tmpl.Clone()

	s.store.AddTemplate(tmpl)
	s.log.Info("Template saved", slog.String("id", tmpl.ID), slog.String("name", tmpl.Name))

	return tmpl, nil
}

func (s *TemplateService) Update(id string, patch entity.TemplatePatch) (entity.UploadTemplate, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return entity.UploadTemplate{}, common.ErrTemplateNameRequiredError
	}

	if patch.Visibility != nil {
		if _, err := entity.ParseVisibility(string(*patch.Visibility)); err != nil {
			return entity.UploadTemplate{}, fmt.Errorf("%w: %w", common.ErrBadRequestError, err)
		}
	}

	if _, err := s.Get(id); err != nil {
		return entity.UploadTemplate{}, err
	}

	s.store.UpdateTemplate(id, patch)

	return s.Get(id)
}

func (s *TemplateService) Remove(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	s.store.RemoveTemplate(id)

	return nil
}

func (s *TemplateService) Get(id string) (entity.UploadTemplate, error) {
	for _, t := range s.store.Snapshot().UploadTemplates {
		if t.ID == id {
			return t, nil
		}
	}

	return entity.UploadTemplate{}, common.ErrTemplateNotFoundError
}

// List returns the templates usable for channelID. Nil lists every template.
func (s *TemplateService) List(channelID *string) []entity.UploadTemplate {
	return query.TemplatesForChannel(s.store.Snapshot().UploadTemplates, channelID)
}

func (s *TemplateService) Apply(id string, draft entity.UploadForm) (entity.UploadForm, error) {
	form, ok := query.ApplyTemplate(s.store.Snapshot().UploadTemplates, id, draft)
	if !ok {
		return draft, common.ErrTemplateNotFoundError
	}

	return form, nil
}

func (s *TemplateService) Preview(description string) (*entity.DescriptionPreview, error) {
	preview, err := s.previewer.Render(description)
	if err != nil {
		s.log.Error("Cannot render preview", slog.Any("error", err))

		return nil, fmt.Errorf("cannot render description: %w", err)
	}

	return preview, nil
}

func fullPatch(t entity.UploadTemplate) entity.TemplatePatch {
	t = t.Clone()

	return entity.TemplatePatch{
		ChannelID:     &t.ChannelID,
		Name:          &t.Name,
		Title:         &t.Title,
		Description:   &t.Description,
		Tags:          &t.Tags,
		Visibility:    &t.Visibility,
		ScheduledDate: &t.ScheduledDate,
	}
}
