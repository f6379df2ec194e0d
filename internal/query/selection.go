package query

import "slices"

type ChannelFilter interface {
	SetSelectedChannelID(id *string)
}

// Selection is a local multi-select channel set. Order of insertion is kept.
type Selection struct {
	ids []string
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		if !s.Has(id) {
			s.ids = append(s.ids, id)
		}
	}

	return s
}

func (s *Selection) Has(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)

		return
	}

	s.ids = append(s.ids, id)
}

func (s *Selection) IDs() []string {
	return append([]string{}, s.ids...)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// SelectedChannelID maps the set onto the single channel filter:
// exactly one member selects it, anything else means all channels.
func (s *Selection) SelectedChannelID() *string {
	if len(s.ids) != 1 {
		return nil
	}

	id := s.ids[0]

	return &id
}

// Reconcile pushes the set into the global channel filter.
func (s *Selection) Reconcile(f ChannelFilter) {
	f.SetSelectedChannelID(s.SelectedChannelID())
}

// ToggleAndReconcile toggles id and syncs the filter in one step.
func (s *Selection) ToggleAndReconcile(id string, f ChannelFilter) {
	s.Toggle(id)
	s.Reconcile(f)
}
