package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("TOKEN", zap.NewNop())
	c.base = srv.URL
	c.http = srv.Client()
	return c
}

func TestSendMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.Equal(t, float64(42), params["chat_id"])
		require.Equal(t, "hello", params["text"])
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"chat":{"id":42}}}`)
	})

	msg, err := c.SendMessage(context.Background(), 42, "hello", nil)
	require.NoError(t, err)
	require.Equal(t, 7, msg.MessageID)
}

func TestSendMessageAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	})

	_, err := c.SendMessage(context.Background(), 42, "hello", nil)
	require.ErrorContains(t, err, "chat not found")
}

func TestSendPhotoUpload(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "42", r.FormValue("chat_id"))
		require.Equal(t, "look", r.FormValue("caption"))
		file, hdr, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "nft.jpg", hdr.Filename)
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":8,"chat":{"id":42}}}`)
	})

	msg, err := c.SendPhoto(context.Background(), 42,
		Photo{Bytes: []byte("jpeg"), Filename: "nft.jpg"}, "look", nil)
	require.NoError(t, err)
	require.Equal(t, 8, msg.MessageID)
}

func TestDownloadFile(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/file/botTOKEN/photos/a.jpg", r.URL.Path)
		fmt.Fprint(w, "raw-bytes")
	})

	data, err := c.DownloadFile(context.Background(), "photos/a.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("raw-bytes"), data)
}

func TestPollerAdvancesOffsetAndSurvivesPanic(t *testing.T) {
	var polls atomic.Int64
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		switch polls.Add(1) {
		case 1:
			require.Equal(t, float64(0), params["offset"])
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":100},{"update_id":101}]}`)
		case 2:
			// offset moved past delivered updates even though one handler panicked
			require.Equal(t, float64(102), params["offset"])
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		}
	})

	var handled []int64
	handler := func(_ context.Context, upd Update) {
		handled = append(handled, upd.UpdateID)
		if upd.UpdateID == 100 {
			panic("handler blew up")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(c, handler, zap.NewNop())
	p.timeout = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return polls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, []int64{100, 101}, handled)
}
