// Package telegram is a minimal Bot API client covering the two calls
// this project needs: sending messages and long-polling updates.
package telegram

import (
	"context"
	"fmt"
	"time"

	"tmscout-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/telegram")

const defaultApiUrl = "https://api.telegram.org"

type Client struct {
	Http  *resty.Client
	token string
}

type ClientOptions struct {
	Token string
	// ApiUrl overrides the Bot API origin, used by tests.
	ApiUrl string
}

func NewClient(opts ClientOptions) *Client {
	apiUrl := opts.ApiUrl
	if apiUrl == "" {
		apiUrl = defaultApiUrl
	}

	client := resty.New()
	client.SetBaseURL(apiUrl)
	client.SetTimeout(time.Second * 90)
	telemetry.InstrumentResty(client, "lib/telegram/http")

	return &Client{Http: client, token: opts.Token}
}

type apiResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage sends text to a chat. When markdown is requested and the
// API rejects the payload (scraped names can break Markdown parsing),
// the same text is resent as plain text.
func (c *Client) SendMessage(ctx context.Context, chatId, text string, markdown bool) error {
	ctx, span := tracer.Start(ctx, "telegram:SendMessage")
	defer span.End()

	err := c.sendMessage(ctx, chatId, text, markdown)
	if err != nil && markdown {
		span.AddEvent("markdown send rejected, retrying as plain text")
		err = c.sendMessage(ctx, chatId, text, false)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send message")
	}
	return err
}

func (c *Client) sendMessage(ctx context.Context, chatId, text string, markdown bool) error {
	body := map[string]string{
		"chat_id": chatId,
		"text":    text,
	}
	if markdown {
		body["parse_mode"] = "Markdown"
	}

	var out apiResponse
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/bot%s/sendMessage", c.token))
	if err != nil {
		return err
	}
	if res.IsError() || !out.Ok {
		return fmt.Errorf("telegram sendMessage failed: %s", out.Description)
	}
	return nil
}

type Update struct {
	UpdateId int64 `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			Id int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	apiResponse
	Result []Update `json:"result"`
}

// GetUpdates long-polls for new updates past offset. timeout is the
// server-side hold in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	ctx, span := tracer.Start(ctx, "telegram:GetUpdates")
	defer span.End()

	var out updatesResponse
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  fmt.Sprint(offset),
			"timeout": fmt.Sprint(timeout),
		}).
		SetResult(&out).
		SetError(&out).
		Get(fmt.Sprintf("/bot%s/getUpdates", c.token))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to poll updates")
		return nil, err
	}
	if res.IsError() || !out.Ok {
		err := fmt.Errorf("telegram getUpdates failed: %s", out.Description)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to poll updates")
		return nil, err
	}
	return out.Result, nil
}
