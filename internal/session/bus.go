package session

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docsync/internal/models"
	"docsync/internal/utils"
)

// BusMessage is one frame relayed between instances serving the same
// document. Content is set only for peer-edit frames so the receiving
// instance can update its local blob.
type BusMessage struct {
	Origin  string         `json:"origin"`
	DocID   string         `json:"docId"`
	Frame   models.WSFrame `json:"frame"`
	Content string         `json:"content,omitempty"`
}

// Bus fans room events out across process instances over Redis pub/sub.
// A single-instance deployment runs without one (nil bus on the router).
type Bus struct {
	id  string
	rdb *redis.Client
	log *utils.Logger

	onRemote func(BusMessage)
}

func NewBus(ctx context.Context, addr string, log *utils.Logger) (*Bus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Bus{id: uuid.NewString(), rdb: rdb, log: log}, nil
}

// OnRemote sets the handler invoked for messages from other instances.
func (b *Bus) OnRemote(fn func(BusMessage)) { b.onRemote = fn }

func (b *Bus) Publish(docID string, frame models.WSFrame, content string) {
	raw, err := json.Marshal(BusMessage{Origin: b.id, DocID: docID, Frame: frame, Content: content})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(context.Background(), channel(docID), raw).Err(); err != nil {
		b.log.Warn("bus publish failed", "doc", docID, "error", err.Error())
	}
}

// Run subscribes to every document channel and forwards remote-origin
// messages until ctx is cancelled. Own messages are filtered by origin id.
func (b *Bus) Run(ctx context.Context) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	defer func() { _ = pubsub.Close() }()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var bm BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				b.log.Warn("bus message unmarshal failed", "error", err.Error())
				continue
			}
			if bm.Origin == b.id || bm.DocID == "" {
				continue
			}
			if b.onRemote != nil {
				b.onRemote(bm)
			}
		}
	}
}

func (b *Bus) Close() { _ = b.rdb.Close() }

func channel(docID string) string { return "docsync:room:" + docID }
