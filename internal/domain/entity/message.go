package entity

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeFile  = "file"
	MessageTypeAudio = "audio"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
)

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	ChatID     string    `json:"chatId" firestore:"chatId"`
	SenderID   string    `json:"senderId" firestore:"senderId"`
	ReceiverID string    `json:"receiverId" firestore:"receiverId"`
	Text       string    `json:"text,omitempty" firestore:"text,omitempty"`
	FileURL    string    `json:"fileUrl,omitempty" firestore:"fileUrl,omitempty"`
	FileName   string    `json:"fileName,omitempty" firestore:"fileName,omitempty"`
	FileSize   int64     `json:"fileSize,omitempty" firestore:"fileSize,omitempty"`
	FileType   string    `json:"fileType,omitempty" firestore:"fileType,omitempty"`
	Duration   float64   `json:"duration,omitempty" firestore:"duration,omitempty"`
	Type       string    `json:"type" firestore:"type"`
	Seen       bool      `json:"seen" firestore:"seen"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
