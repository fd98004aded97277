package ports

import websocketdto "hatbazar/internal/demand-service/core/domain/websocket_dto"

type INotifyWebsocket interface {
	WriteToUser(username string, msg websocketdto.Event)
}
