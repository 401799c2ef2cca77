package model

import "time"

// User 好友目录中的用户，UserID 由调用方提供且创建后不可变
type User struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
