package models

// ChatRequest is the inbound /chat payload, shared by HTTP and NATS ingress.
type ChatRequest struct {
	ThreadID    string `json:"thread_id,omitempty"`
	Message     string `json:"message"`
	UserID      string `json:"user_id,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	Context     string `json:"context,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	AudioFormat string `json:"audio_format,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type ChatResponse struct {
	Reply         string           `json:"reply"`
	ThreadID      string           `json:"thread_id"`
	Route         string           `json:"route,omitempty"`
	ImageBase64   string           `json:"image_base64,omitempty"`
	ImageMime     string           `json:"image_mime,omitempty"`
	Videos        []Video          `json:"videos,omitempty"`
	Suggestions   []string         `json:"suggestions,omitempty"`
	Transcription string           `json:"transcription,omitempty"`
	ImageAnalysis string           `json:"image_analysis,omitempty"`
	Action        *ActionDetection `json:"action,omitempty"`
	PendingAction *PendingAction   `json:"pending_action,omitempty"`
	ActionResult  *ConfirmResponse `json:"action_result,omitempty"`
}

type Video struct {
	Title       string `json:"title"`
	VideoID     string `json:"video_id"`
	IframeURL   string `json:"iframe_url"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Channel     string `json:"channel,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// ActionDetection mirrors the dispatcher outcome at the boundary.
type ActionDetection struct {
	IsCommand           bool           `json:"is_command"`
	Action              string         `json:"action,omitempty"`
	Params              map[string]any `json:"params,omitempty"`
	MissingParams       []string       `json:"missing_params"`
	InvalidParams       []string       `json:"invalid_params,omitempty"`
	PendingConfirmation bool           `json:"pending_confirmation"`
	AutoExecute         bool           `json:"auto_execute"`
	Description         string         `json:"action_description,omitempty"`
	Endpoint            string         `json:"endpoint,omitempty"`
	Method              string         `json:"method,omitempty"`
}

// PendingAction is handed to the client, which echoes it back to /action/confirm.
type PendingAction struct {
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Params      map[string]any `json:"params"`
	Endpoint    string         `json:"endpoint"`
	Method      string         `json:"method"`
	Message     string         `json:"message"`
	Token       string         `json:"token,omitempty"`
}

type ConfirmRequest struct {
	Action   string         `json:"action"`
	Params   map[string]any `json:"params"`
	Endpoint string         `json:"endpoint"`
	Method   string         `json:"method"`
	UserID   string         `json:"user_id"`
	Token    string         `json:"token,omitempty"`
}

type ConfirmResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Result        any    `json:"result,omitempty"`
	Error         string `json:"error,omitempty"`
	BackendStatus int    `json:"backend_status,omitempty"`
}

type ChatMessage struct {
	ID        uint   `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type HistoryResponse struct {
	ThreadID string        `json:"thread_id"`
	Messages []ChatMessage `json:"messages"`
}

// Event is published on the events subject after a side effect happens.
type Event struct {
	Type     string         `json:"type"`
	ThreadID string         `json:"thread_id,omitempty"`
	UserID   string         `json:"user_id,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
	At       string         `json:"at"`
}

// Confirm statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned on the NATS reply envelope
const (
	ErrorInvalidRequest = "invalid_request"
	ErrorInternal       = "internal_error"
)

type ErrorReply struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
