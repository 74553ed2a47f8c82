package notifications

import "context"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a short-lived, user-visible message.
type Notice struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

func Success(title string) Notice {
	return Notice{Level: LevelSuccess, Title: title}
}

func Error(title string) Notice {
	return Notice{Level: LevelError, Title: title}
}

// ErrorWithDetail pairs a headline with the specific reason.
func ErrorWithDetail(title, description string) Notice {
	return Notice{Level: LevelError, Title: title, Description: description}
}

// Text is the line a user reads: the description when present, else the title.
func (n Notice) Text() string {
	if n.Description != "" {
		return n.Description
	}
	return n.Title
}
