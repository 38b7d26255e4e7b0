package storage

import "time"

type APIKey struct {
	ID        string
	Name      string
	Provider  string
	EncSecret string
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time
}

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	FilesJSON   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GenerationEntry struct {
	UserID      string
	APIKeyID    string
	Status      string
	PromptChars int
}
