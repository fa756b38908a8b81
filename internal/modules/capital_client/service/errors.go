package service

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ErrSessionExpired брокер ответил 401: токены CST/X-SECURITY-TOKEN протухли,
// нужен повторный Login.
var ErrSessionExpired = errors.New("capital: session expired")

type APIError struct {
	Op     string
	Status int
	Code   string
	Body   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s http %d: %s", e.Op, e.Status, e.Code)
	}
	return fmt.Sprintf("%s http %d: %s", e.Op, e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return nil
}

func checkStatus(op string, resp *resty.Response) error {
	if resp.StatusCode()/100 == 2 {
		return nil
	}

	body := resp.Body()
	var wrap struct {
		ErrorCode string `json:"errorCode"`
	}
	_ = sonic.Unmarshal(body, &wrap)

	return &APIError{
		Op:     op,
		Status: resp.StatusCode(),
		Code:   wrap.ErrorCode,
		Body:   string(body),
	}
}
