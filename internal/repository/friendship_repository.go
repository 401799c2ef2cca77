package repository

import (
	"sort"
	"study_portal_backend/internal/model"
	"sync"
	"time"
)

// FriendshipRepository 好友申请与好友边的进程内存储
type FriendshipRepository struct {
	mu            sync.RWMutex
	requests      map[int64]*model.FriendRequest
	friendships   map[int64]*model.Friendship
	nextRequestID int64
	nextFriendID  int64
}

func NewFriendshipRepository() *FriendshipRepository {
	return &FriendshipRepository{
		requests:      make(map[int64]*model.FriendRequest),
		friendships:   make(map[int64]*model.Friendship),
		nextRequestID: 1,
		nextFriendID:  1,
	}
}

// CreateFriendship 同时写入双向两条边
func (r *FriendshipRepository) CreateFriendship(userID, friendID string, now time.Time) (model.Friendship, model.Friendship) {
	r.mu.Lock()
	defer r.mu.Unlock()

	forward := &model.Friendship{ID: r.nextFriendID, UserID: userID, FriendID: friendID, CreatedAt: now}
	r.nextFriendID++
	reverse := &model.Friendship{ID: r.nextFriendID, UserID: friendID, FriendID: userID, CreatedAt: now}
	r.nextFriendID++

	r.friendships[forward.ID] = forward
	r.friendships[reverse.ID] = reverse
	return *forward, *reverse
}

func (r *FriendshipRepository) GetFriends(userID string) []model.Friendship {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.Friendship, 0)
	for _, f := range r.friendships {
		if f.UserID == userID {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// IsFriend 任一方向存在边即视为好友
func (r *FriendshipRepository) IsFriend(userID, friendID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.friendships {
		if (f.UserID == userID && f.FriendID == friendID) || (f.UserID == friendID && f.FriendID == userID) {
			return true
		}
	}
	return false
}

// DeleteFriendship 删除两个方向的边，返回是否有记录被删除
func (r *FriendshipRepository) DeleteFriendship(userID, friendID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := false
	for id, f := range r.friendships {
		if (f.UserID == userID && f.FriendID == friendID) || (f.UserID == friendID && f.FriendID == userID) {
			delete(r.friendships, id)
			removed = true
		}
	}
	return removed
}

func (r *FriendshipRepository) CreateRequest(req *model.FriendRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextRequestID
	r.nextRequestID++
	stored := *req
	r.requests[stored.ID] = &stored
}

func (r *FriendshipRepository) GetRequest(id int64) (*model.FriendRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, false
	}
	out := *req
	return &out, true
}

func (r *FriendshipRepository) UpdateRequestStatus(id int64, status model.FriendRequestStatus) (*model.FriendRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, false
	}
	req.Status = status
	out := *req
	return &out, true
}

// FindPendingRequest 查找有序对 (sender, receiver) 上的待处理申请
func (r *FriendshipRepository) FindPendingRequest(senderID, receiverID string) (*model.FriendRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if req.SenderID == senderID && req.ReceiverID == receiverID && req.Status == model.RequestPending {
			out := *req
			return &out, true
		}
	}
	return nil, false
}

func (r *FriendshipRepository) GetPendingRequests(receiverID string) []model.FriendRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.FriendRequest, 0)
	for _, req := range r.requests {
		if req.ReceiverID == receiverID && req.Status == model.RequestPending {
			result = append(result, *req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
