package errors

// Code is a machine-readable error code.
type Code string

// Pipeline errors.
const (
	// CodeCollaboratorUnavailable indicates an external tool or service
	// (yt-dlp, ffmpeg, whisper, local inference service) is unreachable.
	CodeCollaboratorUnavailable Code = "COLLABORATOR_UNAVAILABLE"
	// CodeCredentialMissing indicates a required API key is absent for an
	// explicitly requested provider.
	CodeCredentialMissing Code = "CREDENTIAL_MISSING"
	// CodeFormattingTransport indicates the LLM formatting request failed,
	// timed out, or returned an unusable payload.
	CodeFormattingTransport Code = "FORMATTING_TRANSPORT"
	// CodeModelNotInstalled indicates the requested model is not present on
	// the local inference service.
	CodeModelNotInstalled Code = "MODEL_NOT_INSTALLED"
)

// General errors.
const (
	// CodeNotFound indicates the requested resource was not found.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidInput indicates the input is invalid.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeTimeout indicates an operation exceeded its time bound.
	CodeTimeout Code = "TIMEOUT"
	// CodeInternal indicates an unexpected internal failure.
	CodeInternal Code = "INTERNAL_ERROR"
)

var recoverableCodes = map[Code]bool{
	CodeCollaboratorUnavailable: true,
	CodeFormattingTransport:     true,
	CodeTimeout:                 true,
}

// IsRecoverableCode reports whether the code marks an error the pipeline may
// absorb by falling back to a lower-preference strategy.
func IsRecoverableCode(code Code) bool {
	return recoverableCodes[code]
}
