// Package telegram is a small Telegram Bot API client and the long polling
// loop that feeds the bot.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

// maxMessageChars keeps chunks below the 4096 character limit of sendMessage.
const maxMessageChars = 3500

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      *Chat  `json:"chat,omitempty"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type responseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

type envelope struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *responseParameters `json:"parameters,omitempty"`
}

// RequestError is a Bot API call answered with an error.
type RequestError struct {
	Method      string
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *RequestError) Error() string {
	if e == nil {
		return "telegram request failed"
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = "ok=false"
	}
	if e.StatusCode > 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("telegram %s http %d: %s", e.Method, e.StatusCode, desc)
	}
	return fmt.Sprintf("telegram %s: %s", e.Method, desc)
}

// Retryable reports rate limiting and server side failures.
func (e *RequestError) Retryable() bool {
	return e != nil && (e.RetryAfter > 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500)
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// do sends req and decodes the result into out, when set.
func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &RequestError{Method: method, StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("telegram %s: decode response: %w", method, jsonErr)
	}
	if !env.OK || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{Method: method, StatusCode: resp.StatusCode, Description: env.Description}
		if env.Parameters != nil && env.Parameters.RetryAfter > 0 {
			reqErr.RetryAfter = time.Duration(env.Parameters.RetryAfter) * time.Second
		}
		return reqErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, method string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method, out)
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getMe"), nil)
	if err != nil {
		return nil, err
	}
	var out User
	if err := c.do(req, "getMe", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUpdates long polls for updates after offset and returns the offset of
// the next call.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	url := fmt.Sprintf("%s?timeout=%d", c.methodURL("getUpdates"), secs)
	if offset > 0 {
		url += fmt.Sprintf("&offset=%d", offset)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, offset, err
	}
	var updates []Update
	if err := c.do(req, "getUpdates", &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

func isPollTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "client.timeout exceeded")
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends plain text, split in chunks when too long. markup is
// attached to the last chunk.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *replyMarkup) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	chunks := splitMessage(text, maxMessageChars)
	for i, chunk := range chunks {
		req := sendMessageRequest{ChatID: chatID, Text: chunk}
		if i == len(chunks)-1 {
			req.ReplyMarkup = markup
		}
		if err := c.postJSON(ctx, "sendMessage", req, nil); err != nil {
			return err
		}
	}
	return nil
}

// splitMessage cuts text at line breaks, or hard at max runes for a longer
// line.
func splitMessage(text string, max int) []string {
	if len([]rune(text)) <= max {
		return []string{text}
	}
	var chunks []string
	var cur []rune
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			chunks = append(chunks, s)
		}
		cur = cur[:0]
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		lr := []rune(line)
		if len(cur)+len(lr) > max {
			flush()
		}
		for len(lr) > max {
			chunks = append(chunks, string(lr[:max]))
			lr = lr[max:]
		}
		cur = append(cur, lr...)
	}
	flush()
	return chunks
}

type sendChatActionRequest struct {
	ChatID int64  `json:"chat_id"`
	Action string `json:"action"`
}

func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "typing"
	}
	return c.postJSON(ctx, "sendChatAction", sendChatActionRequest{ChatID: chatID, Action: action}, nil)
}

// upload is one multipart file upload.
type upload struct {
	method   string
	field    string
	filename string
	body     io.Reader
	fields   map[string]string
}

func (c *Client) sendUpload(ctx context.Context, chatID int64, u upload) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		defer mw.Close()

		_ = mw.WriteField("chat_id", strconv.FormatInt(chatID, 10))
		for k, v := range u.fields {
			if v = strings.TrimSpace(v); v != "" {
				_ = mw.WriteField(k, v)
			}
		}
		part, err := mw.CreateFormFile(u.field, u.filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, u.body); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(u.method), pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, u.method, nil)
}

func openUpload(filePath string) (*os.File, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, fmt.Errorf("missing file path")
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("path is a directory: %s", filePath)
	}
	return f, nil
}

// SendAudio uploads an mp3 shown with title in the player.
func (c *Client) SendAudio(ctx context.Context, chatID int64, filePath, title string) error {
	f, err := openUpload(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.sendUpload(ctx, chatID, upload{
		method:   "sendAudio",
		field:    "audio",
		filename: uploadName(title, filePath),
		body:     f,
		fields:   map[string]string{"title": title, "performer": "CW"},
	})
}

// SendVoice uploads an ogg/opus file as a voice message.
func (c *Client) SendVoice(ctx context.Context, chatID int64, filePath, caption string) error {
	f, err := openUpload(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.sendUpload(ctx, chatID, upload{
		method:   "sendVoice",
		field:    "voice",
		filename: uploadName(caption, filePath),
		body:     f,
		fields:   map[string]string{"caption": caption},
	})
}

// SendDocument uploads data as a file named filename.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "file"
	}
	return c.sendUpload(ctx, chatID, upload{
		method:   "sendDocument",
		field:    "document",
		filename: filename,
		body:     bytes.NewReader(data),
	})
}

// uploadName is title with the extension of filePath, so that clients show a
// readable name.
func uploadName(title, filePath string) string {
	ext := filepath.Ext(filePath)
	title = strings.TrimSpace(title)
	if title == "" {
		return filepath.Base(filePath)
	}
	return title + ext
}
