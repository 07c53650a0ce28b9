package strelka

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strelka-bot/strelka-bot/internal/config"
	"github.com/strelka-bot/strelka-bot/pkg/clients"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *clients.MockHTTPClientI) {
	cfg := &config.Config{
		StrelkaAddress: "https://strelkacard.ru",
		CardTypeID:     "test-card-type",
	}
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := clients.NewMockHTTPClientI(ctrl)
	service := New(cfg, client)
	return service, client
}

func TestService_FetchStatus(t *testing.T) {
	wantURL := "https://strelkacard.ru/api/cards/status/?cardnum=1234567890&cardtypeid=test-card-type"

	tests := []struct {
		name         string
		mockSetup    func(client *clients.MockHTTPClientI)
		expected     string
		expectedErr  error
		expectedHTTP int
	}{
		{
			name: "nested card shape",
			mockSetup: func(client *clients.MockHTTPClientI) {
				body := `{"card": {"balance": 12345, "cardactive": true, "cardblocked": false, "numoftrips": 7}}`
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(body), nil, nil)
			},
			expected: "Информация по карте:\n" +
				"Баланс: 123.45 руб. (12345 коп.)\n" +
				"Карта активна: да\n" +
				"Карта заблокирована: нет\n" +
				"Поездок: 7",
		},
		{
			name: "flat shape with zero balance",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(`{"balance": 0}`), nil, nil)
			},
			expected: "Информация по карте:\nБаланс: 0.00 руб. (0 коп.)",
		},
		{
			name: "empty object is not an error",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(`{}`), nil, nil)
			},
			expected: "Информация по карте:\nAPI не вернуло ожидаемые поля (balance/cardactive/cardblocked).",
		},
		{
			name: "upstream error field becomes report text",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(`{"error": "card not found"}`), nil, nil)
			},
			expected: "Ошибка API: card not found",
		},
		{
			name: "upstream message field becomes report text",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(`{"message": "service unavailable"}`), nil, nil)
			},
			expected: "Ошибка API: service unavailable",
		},
		{
			name: "transport failure",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(0, nil, nil, errors.New("connection refused"))
			},
			expectedErr: ErrTransport,
		},
		{
			name: "non-2xx status",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusBadGateway, []byte(`bad gateway`), nil, nil)
			},
			expectedHTTP: http.StatusBadGateway,
		},
		{
			name: "malformed body",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(`not json`), nil, nil)
			},
			expectedErr: ErrFormat,
		},
		{
			name: "non-object body",
			mockSetup: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Get(wantURL, nil).Return(http.StatusOK, []byte(`[1, 2, 3]`), nil, nil)
			},
			expectedErr: ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, client := NewMock(t)
			tt.mockSetup(client)

			report, err := service.FetchStatus("1234567890")

			switch {
			case tt.expectedErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.expectedHTTP != 0:
				require.Error(t, err)
				var httpErr *HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, tt.expectedHTTP, httpErr.StatusCode)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, report)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		expected  string
		expectErr bool
	}{
		{
			name:    "non-numeric balance printed verbatim",
			payload: `{"balance": "n/a"}`,
			expected: "Информация по карте:\n" +
				"Баланс: n/a",
		},
		{
			name:    "blocked card",
			payload: `{"cardactive": false, "cardblocked": true}`,
			expected: "Информация по карте:\n" +
				"Карта активна: нет\n" +
				"Карта заблокирована: да",
		},
		{
			name:    "numeric flags",
			payload: `{"cardactive": 1, "cardblocked": 0}`,
			expected: "Информация по карте:\n" +
				"Карта активна: да\n" +
				"Карта заблокирована: нет",
		},
		{
			name:    "null fields are treated as absent",
			payload: `{"balance": null, "cardactive": null}`,
			expected: "Информация по карте:\n" +
				"API не вернуло ожидаемые поля (balance/cardactive/cardblocked).",
		},
		{
			name:      "array payload",
			payload:   `[]`,
			expectErr: true,
		},
		{
			name:      "scalar payload",
			payload:   `42`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &data))

			report, err := NormalizeStatus(data)
			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, report)
		})
	}
}

func TestNormalizeStatusIdempotent(t *testing.T) {
	var data any
	payload := `{"card": {"balance": 500, "cardactive": true}}`
	require.NoError(t, json.Unmarshal([]byte(payload), &data))

	first, err := NormalizeStatus(data)
	require.NoError(t, err)
	second, err := NormalizeStatus(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
