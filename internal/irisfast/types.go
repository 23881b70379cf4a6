package irisfast

// Message is one event frame pushed by the Iris bridge over WebSocket.
type Message struct {
	Room   string       `json:"room"`
	Msg    string       `json:"msg"`
	Sender *string      `json:"sender,omitempty"`
	JSON   *MessageJSON `json:"json,omitempty"`
}

// MessageJSON carries the raw KakaoTalk chat_logs columns the bridge decrypted.
type MessageJSON struct {
	LogID  string `json:"id"`
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
	Time   string `json:"created_at"`
}

// ChatLog is one historical row returned by the bridge's chat log query API.
type ChatLog struct {
	LogID     string  `json:"id"`
	Room      string  `json:"room"`
	UserID    string  `json:"user_id"`
	Sender    *string `json:"sender,omitempty"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}

type ChatLogsRequest struct {
	Room   string `json:"room"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type ChatLogsResponse struct {
	Logs []ChatLog `json:"logs"`
}

type Config struct {
	Port              int    `json:"port"`
	PollingSpeed      int    `json:"polling_speed"`
	MessageRate       int    `json:"message_rate"`
	WebserverEndpoint string `json:"webserver_endpoint"`
	BotName           string `json:"bot_name"`
	BotID             string `json:"bot_id"`
}

type DecryptRequest struct {
	Data string `json:"data"`
}

type DecryptResponse struct {
	Decrypted string `json:"decrypted"`
}

type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

type ImageReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

type WebSocketState int

const (
	WSStateDisconnected WebSocketState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WebSocketState) String() string {
	switch s {
	case WSStateDisconnected:
		return "disconnected"
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
