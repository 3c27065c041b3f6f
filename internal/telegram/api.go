// Package telegram is a typed subset of the Bot API: the send/edit/delete
// surface the bot consumes plus long-polling update delivery.
package telegram

import "context"

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Chat is a private, group, or supergroup conversation.
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// PhotoSize is one resolution of an uploaded photo.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size"`
}

// Message is an inbound or outbound chat message.
type Message struct {
	MessageID int         `json:"message_id"`
	From      *User       `json:"from"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text"`
	Caption   string      `json:"caption"`
	Photo     []PhotoSize `json:"photo"`
}

// CallbackQuery is a button click on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// Update is one long-poll event.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// File describes a downloadable file on Telegram's servers.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// ChatMember is a chat membership record.
type ChatMember struct {
	User   User   `json:"user"`
	Status string `json:"status"`
}

// InlineKeyboardButton is one inline button with a callback payload.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboardMarkup is the button grid attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendOptions carries optional message parameters.
type SendOptions struct {
	ParseMode   string
	ReplyMarkup *InlineKeyboardMarkup
}

// Photo is an outbound photo: a fetchable URL or raw bytes to upload.
type Photo struct {
	URL      string
	Bytes    []byte
	Filename string
}

// API is the transport surface consumed by the bot. It is satisfied by
// *Client and by test fakes.
type API interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*Message, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, opts *SendOptions) error
	EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string, opts *SendOptions) error
	EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int, markup *InlineKeyboardMarkup) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendPhoto(ctx context.Context, chatID int64, photo Photo, caption string, opts *SendOptions) (*Message, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
	AnswerCallbackQuery(ctx context.Context, queryID, text string) error
	GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error)
}
