package model

import "time"

type FriendRequestStatus string

const (
	RequestPending  FriendRequestStatus = "pending"
	RequestAccepted FriendRequestStatus = "accepted"
	RequestRejected FriendRequestStatus = "rejected"
)

func (s FriendRequestStatus) Resolved() bool {
	return s == RequestAccepted || s == RequestRejected
}

// Friendship 单向好友边，好友关系由一对对称的边表示
type Friendship struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	FriendID  string    `json:"friendId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FriendRequest 好友申请
type FriendRequest struct {
	ID         int64               `json:"id"`
	SenderID   string              `json:"senderId"`
	ReceiverID string              `json:"receiverId"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
}

type FriendRequestView struct {
	FriendRequest
	SenderName string `json:"senderName"`
}

type FriendView struct {
	Friendship
	FriendName string `json:"friendName"`
}

// UnknownName 对方用户记录缺失时的占位名
const UnknownName = "Unknown"
