package chatbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mkravets/ArtPeak/internal/pkg/bot"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

// wireUpdate is the gateway's inbound event shape.
type wireUpdate struct {
	UpdateID    int64  `json:"update_id"`
	ChatID      int64  `json:"chat_id"`
	ChatUserID  int64  `json:"chat_user_id"`
	Username    string `json:"username,omitempty"`
	Text        string `json:"text,omitempty"`
	PhotoFileID string `json:"photo_file_id,omitempty"`
	Callback    *struct {
		MessageID int64  `json:"message_id"`
		Action    string `json:"action"`
	} `json:"callback,omitempty"`
}

// Updates long-polls the gateway and pumps normalized events. The channel
// closes when the context ends; poll failures back off and continue.
func (b *Bridge) Updates(ctx context.Context) (<-chan bot.Update, error) {
	out := make(chan bot.Update)

	go func() {
		defer close(out)
		var offset int64
		for {
			if ctx.Err() != nil {
				return
			}
			updates, err := b.poll(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logPollError(err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(3 * time.Second):
				}
				continue
			}
			for _, wu := range updates {
				if wu.UpdateID >= offset {
					offset = wu.UpdateID + 1
				}
				up, err := b.normalize(ctx, wu)
				if err != nil {
					logPollError(err)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- up:
				}
			}
		}
	}()

	return out, nil
}

func (b *Bridge) poll(ctx context.Context, offset int64) ([]wireUpdate, error) {
	url := b.baseURL + "/updates?timeout=50&offset=" + strconv.FormatInt(offset, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	// Long poll: the request itself may sit open for up to the poll timeout.
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll: gateway status %d", resp.StatusCode)
	}

	var envelope struct {
		OK     bool         `json:"ok"`
		Result []wireUpdate `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if !envelope.OK {
		return nil, fmt.Errorf("poll: gateway refused")
	}
	return envelope.Result, nil
}

// normalize turns a wire event into a bot update, downloading the photo
// payload when the event carries one.
func (b *Bridge) normalize(ctx context.Context, wu wireUpdate) (bot.Update, error) {
	up := bot.Update{
		ChatID:      wu.ChatID,
		ChatUserID:  wu.ChatUserID,
		Username:    wu.Username,
		Text:        wu.Text,
		PhotoFileID: wu.PhotoFileID,
	}
	if wu.Callback != nil {
		up.Callback = &bot.Callback{
			Ref:    transport.Ref{ChatID: wu.ChatID, MessageID: wu.Callback.MessageID},
			Action: wu.Callback.Action,
		}
	}
	if wu.PhotoFileID != "" {
		data, err := b.download(ctx, wu.PhotoFileID)
		if err != nil {
			return bot.Update{}, err
		}
		up.ImageData = data
	}
	return up, nil
}

var _ bot.Source = (*Bridge)(nil)
