package event

import "time"

// 事件类型
const (
	KindUserRegistered = "user.registered"
	KindPostCreated    = "post.created"
	KindPostUpdated    = "post.updated"
	KindPostDeleted    = "post.deleted"
	KindLikeCreated    = "like.created"
	KindFollowCreated  = "follow.created"
	KindFollowRemoved  = "follow.removed"
)

// Event 写路径完成后发出的业务事件，供搜索索引、通知扇出等异步消费
type Event struct {
	Kind       string                 `json:"kind"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher fire-and-forget 发布；失败不得阻塞或回滚写路径
type Publisher interface {
	Publish(e Event)
}

// NopPublisher 测试用空实现
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
