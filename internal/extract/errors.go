package extract

import "fmt"

// Failure reasons reported by the extractor.
const (
	ReasonLLMUnreachable  = "llm_unreachable"
	ReasonEmptyResponse   = "empty_response"
	ReasonSchemaViolation = "schema_violation"
)

// Error classifies why an extraction attempt failed. Callers branch on
// Reason; Err carries the underlying cause.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
