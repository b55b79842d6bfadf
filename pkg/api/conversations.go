package api

// ConversationSummary представляет одну беседу в списке бесед зрителя
type ConversationSummary struct {
	ID            string `json:"id"`
	LastMessageAt int64  `json:"lastMessageAt"` // epoch ms
	UnreadCount   int    `json:"unreadCount"`   // непрочитанные сообщения в этой беседе
}

// ConversationPage is one page of GET /api/v1/conversations.
type ConversationPage struct {
	Conversations []ConversationSummary `json:"conversations"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	Total         int                   `json:"total"`
}

// UnreadTotal sums unread counts of the page. Negative counts from a
// misbehaving backend are ignored.
func (p *ConversationPage) UnreadTotal() int {
	total := 0
	for _, c := range p.Conversations {
		if c.UnreadCount > 0 {
			total += c.UnreadCount
		}
	}
	return total
}
