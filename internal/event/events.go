package event

import "time"

// TopicAnnounce 广播结果事件的主题
const TopicAnnounce = "wallet_events_announce"

// TransactionAnnounced 一笔交易 (或联署) 的广播结果
// Topic: wallet_events_announce, Key: 交易哈希
type TransactionAnnounced struct {
	Hash     string    `json:"hash"`
	Type     uint16    `json:"type"`
	TypeName string    `json:"type_name"`
	Signer   string    `json:"signer"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	Deferred bool      `json:"deferred,omitempty"`
	At       time.Time `json:"at"`
}
