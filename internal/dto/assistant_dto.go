package dto

// AssistantMessage is one turn of the assistant conversation.
type AssistantMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

// AssistantChatRequest is the payload accepted by the assistant proxy.
type AssistantChatRequest struct {
	Messages    []AssistantMessage `json:"messages" validate:"required,min=1,max=40,dive"`
	SubjectName string             `json:"subject_name" validate:"omitempty,max=255"`
	SubjectID   uint               `json:"subject_id" validate:"required"`
	Stage       string             `json:"stage" validate:"omitempty,oneof=primary preparatory secondary"`
	Grade       int                `json:"grade" validate:"omitempty,min=1,max=12"`
	Section     string             `json:"section" validate:"omitempty,max=32"`
	IsAdmin     bool               `json:"is_admin"`
}

// AssistantChatResponse carries the completion text back to the caller.
type AssistantChatResponse struct {
	Response string `json:"response"`
}
