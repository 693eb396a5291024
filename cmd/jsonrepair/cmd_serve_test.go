package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/go-repair/jsonrepair/repair"
)

// closeWriter is the subset of net.Conn that TCP connections satisfy,
// letting a test half-close its write side without sending a websocket
// close control frame (which would race the server's own close-frame echo).
type closeWriter interface {
	CloseWrite() error
}

func TestRepairHandlerValidBody(t *testing.T) {
	handler := repairHandler(zap.NewNop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/repair", strings.NewReader(`{name: 'Ann'}`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"name": "Ann"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRepairHandlerMalformedBody(t *testing.T) {
	handler := repairHandler(zap.NewNop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/repair", strings.NewReader(""))
	rec := httptest.NewRecorder()

	handler(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, repair.KindUnexpectedEnd.String(), body.Kind)
	assert.NotEmpty(t, body.RequestID)
}

func TestRepairStreamHandler(t *testing.T) {
	server := httptest.NewServer(repairStreamHandler(zap.NewNop(), nil))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`[1, 2, 3,]`)))

	cw, ok := conn.UnderlyingConn().(closeWriter)
	require.True(t, ok, "underlying conn must support half-close")
	require.NoError(t, cw.CloseWrite())

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `[1, 2, 3]`, string(data))
}
