package models

import "time"

// Message представляет сообщение в переписке по RFP.
type Message struct {
	ID          string     `json:"id"`
	RFPID       string     `json:"rfpId"`
	SenderID    string     `json:"senderId"`
	RecipientID string     `json:"recipientId"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// MessageRequest представляет структуру запроса для отправки сообщения.
type MessageRequest struct {
	RecipientID string `json:"recipientId" validate:"omitempty,uuid"`
	Content     string `json:"content" validate:"required,notblank,max=5000"`
}

// Thread - переписка автора RFP с одним подрядчиком.
type Thread struct {
	RFPID         string    `json:"rfpId"`
	CounterpartID string    `json:"counterpartId"`
	Messages      []Message `json:"messages"`
}

// UnreadSummary группирует непрочитанные сообщения по RFP и отправителю.
type UnreadSummary struct {
	RFPID      string `json:"rfpId"`
	RFPTitle   string `json:"rfpTitle"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Count      int    `json:"count"`
}

// Unread - ответ на запрос непрочитанных сообщений.
type Unread struct {
	Count   int             `json:"count"`
	Threads []UnreadSummary `json:"threads"`
}

const (
	MessageEvent          = "message"           // Новое сообщение
	BidRequestEvent       = "bid_request"       // Новая заявка на участие
	ApprovalResolvedEvent = "approval_resolved" // Решение по заявке
	ProposalEvent         = "proposal"          // Новое или измененное предложение
	ForumCommentEvent     = "forum_comment"     // Новый комментарий к посту или ответ
)

// Event - уведомление, отправляемое пользователю по websocket.
type Event struct {
	Type   string `json:"type"`
	RFPID  string `json:"rfpId,omitempty"`
	PostID string `json:"postId,omitempty"`
	Data   any    `json:"data,omitempty"`
}
