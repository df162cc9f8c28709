package simulation

import (
	"context"
	"net/http"
	"sync"
	"time"

	dto "staking_sim/internal/api/dto/simulation"
	"staking_sim/internal/converter"
	"staking_sim/internal/model"
	"staking_sim/pkg/resp"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Источники ограничивает CORS роутера
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msgType string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(dto.WSMessage{Type: msgType, Data: data, Time: time.Now().Unix()})
}

// SearchStream поиск через websocket. Первое сообщение клиента — запрос поиска,
// дальше сервер шлёт point на каждую точку сетки и в конце result или error.
func (h *Handler) SearchStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ws := &wsConn{conn: conn}

	var payload dto.SearchRequest
	if err := conn.ReadJSON(&payload); err != nil {
		_ = ws.send(dto.MsgTypeError, errorData(err))
		return
	}

	searchReq, err := converter.ToSearchRequest(payload, h.defaults, h.presets)
	if err != nil {
		_ = ws.send(dto.MsgTypeError, errorData(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	onPoint := func(p model.CurvePoint) {
		if err := ws.send(dto.MsgTypePoint, converter.ToCurvePoint(p)); err != nil {
			// клиент ушёл, дальше считать незачем
			h.log.Debug("websocket write failed", zap.Error(err))
			cancel()
		}
	}

	rec, err := h.serv.Search(ctx, searchReq, onPoint)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			h.log.Error("stream search failed", zap.Error(err))
		}
		_ = ws.send(dto.MsgTypeError, errorData(err))
		return
	}

	_ = ws.send(dto.MsgTypeResult, converter.ToSearchResponse(rec))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func errorData(err error) resp.ErrorResponse {
	return resp.ErrorResponse{Error: err.Error()}
}
