package chatbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mkravets/ArtPeak/internal/pkg/env"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

const defaultTimeout = 15 * time.Second

// Bridge talks to the chat gateway over its JSON HTTP API. It implements
// both the outbound transport.Client and the inbound bot.Source.
type Bridge struct {
	baseURL string
	token   string
	client  *http.Client
}

func New() *Bridge {
	return &Bridge{
		baseURL: strings.TrimRight(env.GetEnv("CHAT_API_URL", "http://localhost:8081"), "/"),
		token:   env.GetEnv("CHAT_API_TOKEN", ""),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type messageResult struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// call posts one method to the gateway and decodes the envelope. Network
// failures and gateway overload are transient; everything the gateway
// refuses outright is permanent.
func (b *Bridge) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return transport.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return transport.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return transport.Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return transport.Transient(fmt.Errorf("%s: gateway status %d", method, resp.StatusCode))
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return transport.Transient(fmt.Errorf("%s: decode response: %w", method, err))
	}
	if !envelope.OK {
		if strings.Contains(strings.ToLower(envelope.Description), "not modified") {
			return transport.ErrNotModified
		}
		return transport.Permanent(fmt.Errorf("%s: %s", method, envelope.Description))
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return transport.Permanent(fmt.Errorf("%s: decode result: %w", method, err))
		}
	}
	return nil
}

func controlsWire(controls transport.Controls) [][]map[string]string {
	if len(controls) == 0 {
		return nil
	}
	rows := make([][]map[string]string, 0, len(controls))
	for _, row := range controls {
		wireRow := make([]map[string]string, 0, len(row))
		for _, control := range row {
			wireRow = append(wireRow, map[string]string{
				"label":  control.Label,
				"action": control.Action,
			})
		}
		rows = append(rows, wireRow)
	}
	return rows
}

func (b *Bridge) SendArtwork(ctx context.Context, chatID int64, fileID, caption string, controls transport.Controls) (transport.Ref, error) {
	var result messageResult
	err := b.call(ctx, "sendArtwork", map[string]any{
		"chat_id":  chatID,
		"file_id":  fileID,
		"caption":  caption,
		"controls": controlsWire(controls),
	}, &result)
	if err != nil {
		return transport.Ref{}, err
	}
	return transport.Ref{ChatID: result.ChatID, MessageID: result.MessageID}, nil
}

func (b *Bridge) EditArtwork(ctx context.Context, ref transport.Ref, caption string, controls transport.Controls) error {
	return b.call(ctx, "editArtwork", map[string]any{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
		"caption":    caption,
		"controls":   controlsWire(controls),
	}, nil)
}

func (b *Bridge) SendNotice(ctx context.Context, chatID int64, text string, controls transport.Controls) (transport.Ref, error) {
	var result messageResult
	err := b.call(ctx, "sendNotice", map[string]any{
		"chat_id":  chatID,
		"text":     text,
		"controls": controlsWire(controls),
	}, &result)
	if err != nil {
		return transport.Ref{}, err
	}
	return transport.Ref{ChatID: result.ChatID, MessageID: result.MessageID}, nil
}

func (b *Bridge) EditNotice(ctx context.Context, ref transport.Ref, text string, controls transport.Controls) error {
	return b.call(ctx, "editNotice", map[string]any{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
		"text":       text,
		"controls":   controlsWire(controls),
	}, nil)
}

func (b *Bridge) DeleteMessage(ctx context.Context, ref transport.Ref) error {
	return b.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
	}, nil)
}

// download fetches a photo payload by file id.
func (b *Bridge) download(ctx context.Context, fileID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/files/"+fileID, nil)
	if err != nil {
		return nil, transport.Permanent(err)
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, transport.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, transport.Permanent(fmt.Errorf("download %s: status %d", fileID, resp.StatusCode))
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, transport.Transient(err)
	}
	return buf.Bytes(), nil
}

var _ transport.Client = (*Bridge)(nil)

func logPollError(err error) {
	log.Warnf("[ChatBridge] poll failed, backing off: %v", err)
}
