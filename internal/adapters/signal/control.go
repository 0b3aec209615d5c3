package signal

import "github.com/dkeye/beatroom/internal/app/gateway"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, gateway.Message{Type: "pong"})
}
