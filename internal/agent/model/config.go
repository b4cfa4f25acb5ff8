package model

// ================ Config ================

// SynthesizerModelConfig configures the generative backend used for the final answer.
type SynthesizerModelConfig struct {
	Model       string  `envconfig:"SYNTHESIZER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"SYNTHESIZER_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"SYNTHESIZER_TEMPERATURE" default:"0.3"`
}

// ResponsePromptConfig customises the synthesis prompt.
type ResponsePromptConfig struct {
	CompanyName     string `envconfig:"PROMPT_COMPANY_NAME" default:"the company"`
	HRContact       string `envconfig:"PROMPT_HR_CONTACT" default:"the HR department"`
	MaxHistoryTurns int    `envconfig:"PROMPT_MAX_HISTORY_TURNS" default:"10"`
}

// RetrievalConfig controls how many hits each retriever asks its source for.
type RetrievalConfig struct {
	TopK     int `envconfig:"RETRIEVAL_TOP_K" default:"3"`
	PoolSize int `envconfig:"RETRIEVAL_POOL_SIZE" default:"8"`
}

// SessionConfig controls the optional Redis-backed history store.
type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"24h"`
}

// DocQAConfig configures the document-QA agent and its model.
type DocQAConfig struct {
	Model       string  `envconfig:"DOCQA_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"DOCQA_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"DOCQA_TEMPERATURE" default:"0.2"`
	TopK        int     `envconfig:"DOCQA_TOP_K" default:"4"`
}

// ModelConfig returns the chat model settings of the document-QA agent.
func (c DocQAConfig) ModelConfig() SynthesizerModelConfig {
	return SynthesizerModelConfig{Model: c.Model, MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

// EmbeddingConfig selects the query embedder. Provider is "gemini" or "openai".
type EmbeddingConfig struct {
	Provider      string `envconfig:"EMBEDDING_PROVIDER" default:"gemini"`
	Model         string `envconfig:"EMBEDDING_MODEL"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	OpenAIToken   string `envconfig:"OPENAI_API_KEY"`
}

// DocumentIndexConfig points at the Qdrant collection backing the document index.
type DocumentIndexConfig struct {
	URL        string `envconfig:"QDRANT_URL"`
	APIKey     string `envconfig:"QDRANT_API_KEY"`
	Collection string `envconfig:"QDRANT_COLLECTION" default:"hr_documents"`
	TextField  string `envconfig:"QDRANT_TEXT_FIELD" default:"text"`
}

// EscalationConfig controls ticket creation for answers that refer the employee to HR.
type EscalationConfig struct {
	Enabled   bool   `envconfig:"ESCALATION_ENABLED" default:"true"`
	TicketTTL string `envconfig:"ESCALATION_TICKET_TTL" default:"168h"`
}
