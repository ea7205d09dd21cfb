package models

import "time"

// BillRecord is one legislative bill as stored in the relational bills table.
// The table is owned and populated by the external ingestion pipeline; this
// service only ever reads it.
type BillRecord struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	FilePath    string `json:"file_path"`
	TextContent string `json:"text_content"`
}

// ConversationMessage is one question/answer exchange logged per sender.
type ConversationMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}
