package messaging

type ChangeTopic string

const (
	// ListUpdated carries list.update requests between list clients.
	ListUpdated ChangeTopic = "list_updated"
)

type RabbitConfig struct {
	Url    string
	VHost  string
	Prefix string
}

// ListUpdateMessage is the wire form of a relayed list update.
type ListUpdateMessage struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	SentAt int64  `json:"sentAt"`
}
