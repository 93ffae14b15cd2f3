package entities

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ToolResult is the uniform outcome of a tool execution. Failures are
// carried as data so callers never handle transport errors directly.
type ToolResult struct {
	Status     string `json:"status"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Response   any    `json:"response,omitempty"`
}

func NewSuccessResult(data any) *ToolResult {
	return &ToolResult{
		Status: ResultSuccess,
		Data:   data,
	}
}

func NewErrorResult(message string) *ToolResult {
	return &ToolResult{
		Status:  ResultError,
		Message: message,
	}
}

// IsError reports whether the result carries a failure.
func (r *ToolResult) IsError() bool {
	return r.Status == ResultError
}
