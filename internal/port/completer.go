package port

import "context"

// Task names the collaborator operation a completion request belongs to.
type Task string

const (
	TaskClassify Task = "classify"
	TaskExtract  Task = "extract"
	TaskEvaluate Task = "evaluate"
)

// CompletionRequest carries one prompt for the external text-generation collaborator.
type CompletionRequest struct {
	Task       Task
	Subject    string // filename or checklist item ID, for logs
	System     string
	Prompt     string
	JSONOutput bool
	MaxTokens  int
}

// CompletionResponse is the raw, untrusted text returned by the collaborator.
type CompletionResponse struct {
	Text  string
	Model string
}

// Completer abstracts an LLM text-generation provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
