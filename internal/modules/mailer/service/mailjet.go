package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"daily_trader/internal/modules/config"
	"daily_trader/pkg/tracing"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type address struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type attachment struct {
	ContentType   string `json:"ContentType"`
	Filename      string `json:"Filename"`
	Base64Content string `json:"Base64Content"`
}

type message struct {
	From        address      `json:"From"`
	To          []address    `json:"To"`
	Subject     string       `json:"Subject"`
	HTMLPart    string       `json:"HTMLPart"`
	Attachments []attachment `json:"Attachments,omitempty"`
}

type sendRequest struct {
	Messages []message `json:"Messages"`
}

type sendResponse struct {
	Messages []struct {
		Status string `json:"Status"`
		Errors []struct {
			ErrorMessage string `json:"ErrorMessage"`
		} `json:"Errors"`
	} `json:"Messages"`
}

// Mailer отправка отчёта через Mailjet Send API v3.1.
type Mailer struct {
	http *resty.Client
	cfg  config.Mail
	log  *zap.Logger
}

func NewMailer(cfg *config.Config, log *zap.Logger) *Mailer {
	h := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.Mail.BaseURL, "/")).
		SetTimeout(30 * time.Second).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetBasicAuth(cfg.Mail.APIKey, cfg.Mail.SecretKey)

	return &Mailer{http: h, cfg: cfg.Mail, log: log.Named("mailer")}
}

// SendReport шлёт html отчёт телом письма и вложением. Без ключей, адресов
// или файла отчёта только предупреждает и возвращает nil.
func (m *Mailer) SendReport(ctx context.Context, reportPath string) (err error) {
	if m.cfg.APIKey == "" || m.cfg.SecretKey == "" {
		m.log.Warn("mailjet keys are not set, report not sent")
		return nil
	}
	if m.cfg.From == "" || len(m.cfg.To) == 0 {
		m.log.Warn("mail from/to are not set, report not sent")
		return nil
	}
	html, err := os.ReadFile(reportPath)
	if err != nil {
		m.log.Warn("report file missing, nothing to send", zap.String("path", reportPath), zap.Error(err))
		return nil
	}

	ctx, finish := tracing.StartSpan(ctx, "mailer.send")
	defer func() { finish(err) }()

	to := make([]address, 0, len(m.cfg.To))
	for _, e := range m.cfg.To {
		to = append(to, address{Email: e})
	}
	req := sendRequest{Messages: []message{{
		From:     address{Email: m.cfg.From, Name: m.cfg.FromName},
		To:       to,
		Subject:  fmt.Sprintf("%s %s", m.cfg.Subject, time.Now().Format("2006-01-02")),
		HTMLPart: string(html),
		Attachments: []attachment{{
			ContentType:   "text/html",
			Filename:      filepath.Base(reportPath),
			Base64Content: base64.StdEncoding.EncodeToString(html),
		}},
	}}}

	var out sendResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/v3.1/send")
	if err != nil {
		return errors.Wrap(err, "mailjet send")
	}
	if resp.IsError() {
		return fmt.Errorf("mailjet send: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	for _, msg := range out.Messages {
		if msg.Status != "success" {
			reason := msg.Status
			if len(msg.Errors) > 0 {
				reason = msg.Errors[0].ErrorMessage
			}
			return fmt.Errorf("mailjet send: %s", reason)
		}
	}

	m.log.Info("report sent", zap.Strings("to", m.cfg.To), zap.Int("bytes", len(html)))
	return nil
}
