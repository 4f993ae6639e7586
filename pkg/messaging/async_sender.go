package messaging

import (
	"errors"
	"log"

	"github.com/matst80/slask-list/pkg/common"
)

var ErrSenderClosed = errors.New("sender is closed")

// AsyncSender queues messages and delivers them through the wrapped sender on
// a background goroutine, so relaying never blocks the caller.
type AsyncSender struct {
	queue *common.QueueHandler[ListUpdateMessage]
}

func NewAsyncSender(sender Sender, batchSize int) *AsyncSender {
	return &AsyncSender{
		queue: common.NewQueueHandler(func(msgs []ListUpdateMessage) {
			for _, msg := range msgs {
				if err := sender.Send(msg); err != nil {
					log.Printf("failed to send list update %s: %v", msg.URL, err)
				}
			}
		}, batchSize),
	}
}

func (s *AsyncSender) Send(msg ListUpdateMessage) error {
	if !s.queue.Add(msg) {
		return ErrSenderClosed
	}
	return nil
}

// Close delivers the queued messages and stops the sender.
func (s *AsyncSender) Close() {
	s.queue.Close()
}
