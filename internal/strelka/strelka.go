package strelka

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/strelka-bot/strelka-bot/internal/config"
	"github.com/strelka-bot/strelka-bot/pkg/clients"
	"go.uber.org/zap"
)

const statusPath = "/api/cards/status/"

var (
	ErrTransport = errors.New("strelka request failed")
	ErrFormat    = errors.New("unexpected response format")
)

// HTTPError is returned when the strelka API answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("strelka API returned status %d", e.StatusCode)
}

type Service struct {
	url        string
	cardTypeID string
	client     clients.HTTPClientI
}

func New(cfg *config.Config, client clients.HTTPClientI) *Service {
	return &Service{
		url:        cfg.StrelkaAddress,
		cardTypeID: cfg.CardTypeID,
		client:     client,
	}
}

// FetchStatus queries the card status endpoint and returns a human-readable
// report. An "error"/"message" field in an otherwise well-formed response is
// rendered as report text, not returned as an error: the upstream contract is
// undocumented and such answers are considered valid.
func (s *Service) FetchStatus(cardNumber string) (string, error) {
	params := url.Values{}
	params.Set("cardnum", cardNumber)
	params.Set("cardtypeid", s.cardTypeID)
	reqURL := s.url + statusPath + "?" + params.Encode()

	statusCode, respBody, _, err := s.client.Get(reqURL, nil)
	if err != nil {
		zap.L().Error("strelka request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if statusCode < 200 || statusCode > 299 {
		zap.L().Error("strelka API returned non-2xx status", zap.Int("status", statusCode))
		return "", &HTTPError{StatusCode: statusCode}
	}

	var data any
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}

	if m, ok := data.(map[string]any); ok {
		if msg := upstreamError(m); msg != "" {
			return "Ошибка API: " + msg, nil
		}
	}

	return NormalizeStatus(data)
}

func upstreamError(m map[string]any) string {
	for _, key := range []string{"error", "message"} {
		if v, ok := m[key]; ok && truthy(v) {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// NormalizeStatus converts a decoded status payload into report text. The API
// is known to answer in two shapes: the record either sits under a nested
// "card" object or at the top level. All four fields are optional; a payload
// with none of them still yields a report.
func NormalizeStatus(data any) (string, error) {
	record, ok := data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: expected a JSON object", ErrFormat)
	}
	if card, ok := record["card"].(map[string]any); ok {
		record = card
	}

	lines := []string{"Информация по карте:"}

	if balance, ok := record["balance"]; ok && balance != nil {
		if kopecks, ok := balance.(float64); ok {
			lines = append(lines, fmt.Sprintf("Баланс: %.2f руб. (%d коп.)", kopecks/100, int64(kopecks)))
		} else {
			lines = append(lines, fmt.Sprintf("Баланс: %v", balance))
		}
	}
	if active, ok := record["cardactive"]; ok && active != nil {
		lines = append(lines, "Карта активна: "+yesNo(truthy(active)))
	}
	if blocked, ok := record["cardblocked"]; ok && blocked != nil {
		lines = append(lines, "Карта заблокирована: "+yesNo(truthy(blocked)))
	}
	if trips, ok := record["numoftrips"]; ok && trips != nil {
		lines = append(lines, fmt.Sprintf("Поездок: %v", trips))
	}

	if len(lines) == 1 {
		lines = append(lines, "API не вернуло ожидаемые поля (balance/cardactive/cardblocked).")
	}

	return strings.Join(lines, "\n"), nil
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return true
}
