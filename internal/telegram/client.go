package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to the Bot API over HTTPS.
type Client struct {
	token string
	base  string // https://api.telegram.org
	http  *http.Client
	log   *zap.Logger
}

var _ API = (*Client)(nil)

// NewClient constructs a Bot API client. The HTTP timeout must exceed the
// long-poll timeout used by the poller.
func NewClient(token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		token: token,
		base:  "https://api.telegram.org",
		http:  &http.Client{Timeout: 65 * time.Second},
		log:   log,
	}
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// invoke POSTs a JSON-encoded method call and decodes the result into out.
func (c *Client) invoke(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(method, req, out)
}

func (c *Client) do(method string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", method, err)
	}
	var env apiResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s: decode: %w", method, err)
	}
	if !env.OK {
		return fmt.Errorf("%s: api error: %s", method, env.Description)
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*Message, error) {
	params := map[string]any{"chat_id": chatID, "text": text}
	applyOptions(params, opts)
	var msg Message
	if err := c.invoke(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text of an existing message.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, opts *SendOptions) error {
	params := map[string]any{"chat_id": chatID, "message_id": messageID, "text": text}
	applyOptions(params, opts)
	return c.invoke(ctx, "editMessageText", params, nil)
}

// EditMessageCaption replaces the caption of an existing media message.
func (c *Client) EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string, opts *SendOptions) error {
	params := map[string]any{"chat_id": chatID, "message_id": messageID, "caption": caption}
	applyOptions(params, opts)
	return c.invoke(ctx, "editMessageCaption", params, nil)
}

// EditMessageReplyMarkup replaces the inline keyboard of a message; a nil
// markup removes it.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int, markup *InlineKeyboardMarkup) error {
	params := map[string]any{"chat_id": chatID, "message_id": messageID}
	if markup != nil {
		params["reply_markup"] = markup
	}
	return c.invoke(ctx, "editMessageReplyMarkup", params, nil)
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return c.invoke(ctx, "deleteMessage", map[string]any{"chat_id": chatID, "message_id": messageID}, nil)
}

// SendPhoto sends a photo by URL or by multipart upload.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo Photo, caption string, opts *SendOptions) (*Message, error) {
	var msg Message
	if photo.URL != "" {
		params := map[string]any{"chat_id": chatID, "photo": photo.URL, "caption": caption}
		applyOptions(params, opts)
		if err := c.invoke(ctx, "sendPhoto", params, &msg); err != nil {
			return nil, err
		}
		return &msg, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("chat_id", fmt.Sprint(chatID))
	if caption != "" {
		_ = w.WriteField("caption", caption)
	}
	if opts != nil && opts.ParseMode != "" {
		_ = w.WriteField("parse_mode", opts.ParseMode)
	}
	if opts != nil && opts.ReplyMarkup != nil {
		markup, err := json.Marshal(opts.ReplyMarkup)
		if err != nil {
			return nil, fmt.Errorf("sendPhoto: marshal markup: %w", err)
		}
		_ = w.WriteField("reply_markup", string(markup))
	}
	part, err := w.CreateFormFile("photo", photo.Filename)
	if err != nil {
		return nil, fmt.Errorf("sendPhoto: %w", err)
	}
	if _, err := part.Write(photo.Bytes); err != nil {
		return nil, fmt.Errorf("sendPhoto: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("sendPhoto: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendPhoto", c.base, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := c.do("sendPhoto", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetFile looks up the download path for a file id.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var f File
	if err := c.invoke(ctx, "getFile", map[string]any{"file_id": fileID}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DownloadFile fetches file bytes from the file endpoint.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	url := fmt.Sprintf("%s/file/bot%s/%s", c.base, c.token, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", filePath, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", filePath, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// AnswerCallbackQuery acknowledges a button click, optionally with a notice.
func (c *Client) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	params := map[string]any{"callback_query_id": queryID}
	if text != "" {
		params["text"] = text
	}
	return c.invoke(ctx, "answerCallbackQuery", params, nil)
}

// GetChatMember looks up a member of a chat by numeric id.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	var m ChatMember
	params := map[string]any{"chat_id": chatID, "user_id": userID}
	if err := c.invoke(ctx, "getChatMember", params, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	params := map[string]any{
		"offset":  offset,
		"timeout": int(timeout.Seconds()),
	}
	var updates []Update
	if err := c.invoke(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func applyOptions(params map[string]any, opts *SendOptions) {
	if opts == nil {
		return
	}
	if opts.ParseMode != "" {
		params["parse_mode"] = opts.ParseMode
	}
	if opts.ReplyMarkup != nil {
		params["reply_markup"] = opts.ReplyMarkup
	}
}
