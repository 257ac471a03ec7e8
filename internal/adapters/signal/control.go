package signal

import "github.com/dkeye/Office/internal/protocol"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.sendJSON(conn, protocol.Simple{Type: protocol.TypePong})
}
