package common

import "fmt"

var (
	ErrSnapshotNotFoundError          = fmt.Errorf("snapshot not found")
	ErrTemplateNotFoundError          = fmt.Errorf("template not found")
	ErrChannelNotFoundError           = fmt.Errorf("channel not found")
	ErrTemplateNameRequiredError      = fmt.Errorf("template name is required")
	ErrImportProcessHasAlreadyStarted = fmt.Errorf("import process has already started")
	ErrNoTemplatesFoundError          = fmt.Errorf("no templates found")
	ErrUnknownStorageBackendError     = fmt.Errorf("unknown storage backend")
	ErrBadRequestError                = fmt.Errorf("bad request")
)
