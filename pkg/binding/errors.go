package binding

import "errors"

var (
	ErrMissingID          = errors.New("binding: id is required")
	ErrMissingURL         = errors.New("binding: url is required")
	ErrMissingRegion      = errors.New("binding: result region is required")
	ErrDuplicateID        = errors.New("binding: duplicate id")
	ErrUnknownEncoding    = errors.New("binding: unknown encoding")
	ErrUnknownTrigger     = errors.New("binding: unknown trigger")
	ErrUnknownResponse    = errors.New("binding: unknown response mode")
	ErrUnknownFieldKind   = errors.New("binding: unknown field kind")
	ErrMissingFieldName   = errors.New("binding: field name is required")
	ErrDuplicateField     = errors.New("binding: duplicate field")
	ErrFileNeedsMultipart = errors.New("binding: file fields require multipart encoding")
	ErrUnknownParamSource = errors.New("binding: param_from references unknown field")
	ErrNotFound           = errors.New("binding: not found")
)
