package model

// PipelineState stores per-invocation state for the copilot graph.
// Concurrency model:
//   - Registered as Graph Local State via compose.WithGenLocalState; a fresh
//     value is generated for every Invoke.
//   - All reads/writes happen inside Eino state handlers or compose.ProcessState,
//     which serialize access, so no extra locking is needed.
//   - Nodes never see a field written by a later node.
type PipelineState struct {
	Query               string           `json:"query"`
	Category            Category         `json:"category,omitempty"`
	Retrieved           []Retrieved      `json:"retrieved"`
	EmployeeContext     *EmployeeContext `json:"employee_context,omitempty"`
	ConversationHistory []Turn           `json:"conversation_history"`
	FinalResponse       string           `json:"final_response,omitempty"`
	Usage               *Usage           `json:"usage,omitempty"`
}

// Clone returns a deep copy so callers never share slices with graph state.
func (s *PipelineState) Clone() *PipelineState {
	if s == nil {
		return nil
	}
	out := *s
	out.Retrieved = append([]Retrieved(nil), s.Retrieved...)
	out.ConversationHistory = append([]Turn(nil), s.ConversationHistory...)
	if s.EmployeeContext != nil {
		ec := *s.EmployeeContext
		out.EmployeeContext = &ec
	}
	if s.Usage != nil {
		u := *s.Usage
		out.Usage = &u
	}
	return &out
}

// QueryInput represents the caller input for one copilot invocation.
type QueryInput struct {
	Query               string           `json:"query"`
	EmployeeContext     *EmployeeContext `json:"employee_context,omitempty"`
	ConversationHistory []Turn           `json:"conversation_history,omitempty"`
}

// EmployeeContext is passed through to the prompt untouched.
type EmployeeContext struct {
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
	Tenure     string `json:"tenure,omitempty"`
}

// Retrieved is one retriever's contribution, in configured retriever order.
type Retrieved struct {
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}

// Usage summarises the synthesis call's token usage and cost.
type Usage struct {
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}
