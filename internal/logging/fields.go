package logging

// Field name constants for structured logging.
const (
	FieldError  = "error"
	FieldPath   = "path"
	FieldURI    = "uri"
	FieldRoot   = "root"
	FieldMethod = "method"
	FieldEpoch  = "epoch"
	FieldMode   = "mode"
	FieldFiles  = "files"

	FieldFilesIndexed   = "files_indexed"
	FieldFilesChanged   = "files_changed"
	FieldFilesPublished = "files_published"
	FieldDiagnostics    = "diagnostics"

	FieldVersion = "version"
)
