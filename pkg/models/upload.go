// Package models contains wire-format request/response types and the
// core domain types shared between the ingest, batching, and scoring
// packages.
package models

import "time"

// Direction is the side that sent a message.
type Direction string

const (
	DirectionToCompany Direction = "to_company"
	DirectionToClient  Direction = "to_client"
)

// RawMessage is one element of an uploaded chat's message array, in the
// wire shape described by SPEC_FULL ยง6.
type RawMessage struct {
	MessageContent   *string `json:"MESSAGE_CONTENT"`
	Direction        string  `json:"DIRECTION"`
	SocialCreateTime string  `json:"SOCIAL_CREATE_TIME"`
	AgentUsername    *string `json:"AGENT_USERNAME,omitempty"`
	AgentEmail       *string `json:"AGENT_EMAIL,omitempty"`
}

// UploadPayload is the parsed body of POST /api/upload-json: a mapping of
// chat_id to its ordered raw messages.
type UploadPayload map[string][]RawMessage

// NormalizedMessage is the output of the validator (C1): a RawMessage that
// passed every check, with its timestamp and direction parsed.
type NormalizedMessage struct {
	ChatID           string
	MessageContent   string
	Direction        Direction
	SocialCreateTime time.Time
	AgentInfo        map[string]any
}

// UploadRequest carries the decoded upload-json form fields into the
// orchestrator.
type UploadRequest struct {
	Payload        UploadPayload
	ForceReprocess bool
}

// UploadAcceptedResponse is returned synchronously from POST /api/upload-json.
type UploadAcceptedResponse struct {
	UploadID               string `json:"upload_id"`
	Success                bool   `json:"success"`
	ConversationsProcessed int    `json:"conversations_processed"`
	MessagesProcessed      int    `json:"messages_processed"`
}
