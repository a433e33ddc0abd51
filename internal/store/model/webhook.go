package model

import "time"

// Webhook is a registered callback URL invoked on a named event.
type Webhook struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Url       string `gorm:"size:1000;not null"`
	Event     string `gorm:"size:100;index"`
	Active    bool   `gorm:"not null"`
	CreatedAt time.Time
}

type WebhookList []Webhook
