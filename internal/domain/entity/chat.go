package entity

import (
	"sort"
	"strings"
	"time"
)

// LastMessageAttachment is the chat summary used when the latest message has no text.
const LastMessageAttachment = "📎 Attachment received"

const ChatStartedMessage = "Chat started"

type Chat struct {
	ID              string    `json:"id" firestore:"id"`
	CustomerID      string    `json:"customerId" firestore:"customerId"`
	ProviderID      string    `json:"providerId" firestore:"providerId"`
	Participants    []string  `json:"participants" firestore:"participants"`
	LastMessage     string    `json:"last_message" firestore:"lastMessage"`
	LastMessageType string    `json:"last_message_type" firestore:"lastMessageType"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (c *Chat) HasParticipant(userID string) bool {
	return userID != "" && (c.CustomerID == userID || c.ProviderID == userID)
}

// Other returns the id and role of the participant that is not userID.
func (c *Chat) Other(userID string) (string, string) {
	if c.CustomerID == userID {
		return c.ProviderID, RoleProvider
	}
	return c.CustomerID, RoleCustomer
}

// RoleOf returns the role userID plays in the chat.
func (c *Chat) RoleOf(userID string) string {
	if c.CustomerID == userID {
		return RoleCustomer
	}
	return RoleProvider
}

// PairKey normalizes an unordered participant pair.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// ChatSummary is a chat listing row for one user.
type ChatSummary struct {
	*Chat
	OtherParticipant Participant `json:"otherParticipant"`
	UnreadCount      int64       `json:"unreadCount"`
}
