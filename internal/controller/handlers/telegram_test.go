package handlers

import (
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/require"
)

// telegramCall один запрос к Bot API
type telegramCall struct {
	method string
	fields map[string]string
	files  []string
}

// fakeTelegram записывает запросы бота и отвечает успехом
type fakeTelegram struct {
	mu    sync.Mutex
	calls []telegramCall
}

func newTestBot(t *testing.T) (*bot.Bot, *fakeTelegram) {
	t.Helper()

	ft := &fakeTelegram{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := telegramCall{method: path.Base(r.URL.Path), fields: map[string]string{}}
		if err := r.ParseMultipartForm(10 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				call.fields[k] = v[0]
			}
			for k := range r.MultipartForm.File {
				call.files = append(call.files, k)
			}
		}

		ft.mu.Lock()
		ft.calls = append(ft.calls, call)
		ft.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch call.method {
		case "answerCallbackQuery", "setMyCommands":
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
		}
	}))
	t.Cleanup(srv.Close)

	b, err := bot.New("test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	return b, ft
}

func (ft *fakeTelegram) last(t *testing.T) telegramCall {
	t.Helper()

	ft.mu.Lock()
	defer ft.mu.Unlock()
	require.NotEmpty(t, ft.calls, "no telegram calls")
	return ft.calls[len(ft.calls)-1]
}

func (ft *fakeTelegram) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.calls)
}
