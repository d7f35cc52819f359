// ABOUTME: Request builder and response parser for the model backend
// ABOUTME: Payloads are OpenAI-style chat completions with a json_schema response format

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/averla/assist-gateway/internal/command"
	"github.com/averla/assist-gateway/internal/session"
)

// ErrMalformedResponse is returned when a model reply fails schema
// validation. Treated as a backend defect by the orchestrator.
var ErrMalformedResponse = errors.New("malformed model response")

// ModelConfig carries the per-request model parameters.
type ModelConfig struct {
	Model        string
	SystemPrompt string // persona prompt plus command catalog; empty to omit
}

// ChatMessage is one {role, content} pair in the outbound payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the complete request body for the model backend.
type Payload struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat wraps the JSON schema the model must answer with.
type ResponseFormat struct {
	Type       string     `json:"type"`
	JSONSchema JSONSchema `json:"json_schema"`
}

// JSONSchema names the schema object.
type JSONSchema struct {
	Name   string       `json:"name"`
	Schema SchemaObject `json:"schema"`
}

// SchemaObject is a minimal JSON-schema node, just enough to express the
// assistant response contract.
type SchemaObject struct {
	Type                 string                  `json:"type"`
	Description          string                  `json:"description,omitempty"`
	Properties           map[string]SchemaObject `json:"properties,omitempty"`
	Required             []string                `json:"required,omitempty"`
	AdditionalProperties any                     `json:"additionalProperties,omitempty"`
}

// Answer is the typed form of a structured model reply.
type Answer struct {
	Text                 string
	Command              *command.Command
	ContinueConversation bool

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// responseSchema is the contract every reply must satisfy: text (may be
// empty), an optional command with a required name and string-valued
// parameters, and a required continueConversation flag.
func responseSchema() *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: JSONSchema{
			Name: "assistant_response",
			Schema: SchemaObject{
				Type: "object",
				Properties: map[string]SchemaObject{
					"text": {
						Type:        "string",
						Description: "Text shown to the user. May be empty when no output is needed.",
					},
					"command": {
						Type:        "object",
						Description: "A command the assistant wants the host system to execute.",
						Properties: map[string]SchemaObject{
							"name": {
								Type:        "string",
								Description: "Name of the command to execute.",
							},
							"parameters": {
								Type:        "object",
								Description: "Free-form named parameters for the command.",
								AdditionalProperties: SchemaObject{
									Type:        "string",
									Description: "Parameter value, always passed as a string.",
								},
							},
						},
						Required: []string{"name"},
					},
					"continueConversation": {
						Type:        "boolean",
						Description: "Set when more input from the user is expected or the conversation should go on.",
					},
				},
				Required:             []string{"continueConversation"},
				AdditionalProperties: false,
			},
		},
	}
}

// BuildRequest assembles the outbound payload: the optional system
// prompt, the session's trimmed history in order, and the new message
// last, plus the strict response schema.
func BuildRequest(sess session.Session, role, text string, cfg ModelConfig) Payload {
	messages := make([]ChatMessage, 0, len(sess.History)+2)
	if cfg.SystemPrompt != "" {
		messages = append(messages, ChatMessage{Role: session.RoleSystem, Content: cfg.SystemPrompt})
	}
	for _, msg := range sess.History {
		messages = append(messages, ChatMessage{Role: msg.Role, Content: msg.Text})
	}
	messages = append(messages, ChatMessage{Role: role, Content: text})

	return Payload{
		Model:          cfg.Model,
		Messages:       messages,
		ResponseFormat: responseSchema(),
	}
}

// chatCompletion mirrors the backend's reply envelope.
type chatCompletion struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// structuredReply is the schema-constrained document inside the first
// choice's content. Pointer fields distinguish absent from zero.
type structuredReply struct {
	Text     *string `json:"text"`
	Command  *struct {
		Name       string            `json:"name"`
		Parameters map[string]string `json:"parameters"`
	} `json:"command"`
	Continue *bool `json:"continueConversation"`
}

// ParseResponse validates a raw backend reply and extracts the typed
// answer with token accounting. completionTokens is total minus prompt,
// clamped at zero.
func ParseResponse(raw []byte) (*Answer, error) {
	var envelope chatCompletion
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(envelope.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in reply", ErrMalformedResponse)
	}

	var reply structuredReply
	if err := json.Unmarshal([]byte(envelope.Choices[0].Message.Content), &reply); err != nil {
		return nil, fmt.Errorf("%w: content is not valid structured data: %v", ErrMalformedResponse, err)
	}
	if reply.Continue == nil {
		return nil, fmt.Errorf("%w: missing continueConversation", ErrMalformedResponse)
	}
	if reply.Text == nil {
		return nil, fmt.Errorf("%w: missing text field", ErrMalformedResponse)
	}

	answer := &Answer{
		Text:                 *reply.Text,
		ContinueConversation: *reply.Continue,
		PromptTokens:         envelope.Usage.PromptTokens,
		TotalTokens:          envelope.Usage.TotalTokens,
	}
	if completion := answer.TotalTokens - answer.PromptTokens; completion > 0 {
		answer.CompletionTokens = completion
	}

	if reply.Command != nil {
		if reply.Command.Name == "" {
			return nil, fmt.Errorf("%w: command without a name", ErrMalformedResponse)
		}
		answer.Command = &command.Command{
			Name:       reply.Command.Name,
			Parameters: reply.Command.Parameters,
		}
	}

	return answer, nil
}
