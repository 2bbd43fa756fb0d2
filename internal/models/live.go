package models

// Live event types pushed over the websocket feed.
const (
	EventPriceAlert   = "price_alert"
	EventNotification = "notification"
	EventConnected    = "connected"
)

type LiveEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
