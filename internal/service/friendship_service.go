package service

import (
	"strings"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"study_portal_backend/pkg/logger"
	"study_portal_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

type FriendshipService struct {
	// 检查 + 写入需要整体原子，仓储锁只保护单次操作
	mu         sync.Mutex
	FriendRepo *repository.FriendshipRepository
	UserRepo   *repository.UserRepository
	now        func() time.Time
}

func NewFriendshipService(friendRepo *repository.FriendshipRepository, userRepo *repository.UserRepository) *FriendshipService {
	return &FriendshipService{
		FriendRepo: friendRepo,
		UserRepo:   userRepo,
		now:        time.Now,
	}
}

// CreateOrUpdateUser 存在则更新名称，否则创建
func (s *FriendshipService) CreateOrUpdateUser(userID, name string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return nil, util.Validationf("userId and name are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.UserRepo.UpdateName(userID, name); ok {
		return user, nil
	}
	user := &model.User{UserID: userID, Name: name, CreatedAt: s.now()}
	s.UserRepo.Create(user)
	return user, nil
}

func (s *FriendshipService) SearchUsers(query string) ([]model.User, error) {
	if query == "" {
		return nil, util.Validationf("search query is required")
	}
	return s.UserRepo.Search(query), nil
}

func (s *FriendshipService) SendFriendRequest(senderID, receiverID string) (*model.FriendRequest, error) {
	if senderID == "" || receiverID == "" {
		return nil, util.Validationf("senderId and receiverId are required")
	}
	if senderID == receiverID {
		return nil, util.Validationf("cannot send a friend request to yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.FriendRepo.FindPendingRequest(senderID, receiverID); exists {
		monitoring.FriendRequests.WithLabelValues("duplicate").Inc()
		return nil, util.ErrDuplicateRequest
	}
	if s.FriendRepo.IsFriend(senderID, receiverID) {
		monitoring.FriendRequests.WithLabelValues("already_friends").Inc()
		return nil, util.ErrAlreadyFriends
	}

	req := &model.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.RequestPending,
		CreatedAt:  s.now(),
	}
	s.FriendRepo.CreateRequest(req)
	monitoring.FriendRequests.WithLabelValues("sent").Inc()
	return req, nil
}

// RespondToRequest 处理好友申请；申请不存在时返回 nil, nil
func (s *FriendshipService) RespondToRequest(requestID int64, status model.FriendRequestStatus) (*model.FriendRequest, error) {
	if !status.Resolved() {
		return nil, util.Validationf("status must be accepted or rejected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.FriendRepo.GetRequest(requestID)
	if !ok {
		return nil, nil
	}
	if req.Status != model.RequestPending {
		return nil, util.ErrRequestResolved
	}

	updated, _ := s.FriendRepo.UpdateRequestStatus(requestID, status)
	monitoring.FriendRequests.WithLabelValues(string(status)).Inc()
	if status == model.RequestRejected {
		return updated, nil
	}

	// 已经是好友（互相申请的情况）时只更新申请状态
	if s.FriendRepo.IsFriend(req.SenderID, req.ReceiverID) {
		return updated, nil
	}

	// 对方也发过申请的，一并设为已接受
	if reverse, exists := s.FriendRepo.FindPendingRequest(req.ReceiverID, req.SenderID); exists {
		s.FriendRepo.UpdateRequestStatus(reverse.ID, model.RequestAccepted)
	}

	s.FriendRepo.CreateFriendship(req.SenderID, req.ReceiverID, s.now())
	logger.Log.Info("Friendship created", zap.String("user", req.SenderID), zap.String("friend", req.ReceiverID))
	return updated, nil
}

// ListFriendRequests 收到的待处理申请，附带发送者名称
func (s *FriendshipService) ListFriendRequests(userID string) []model.FriendRequestView {
	pending := s.FriendRepo.GetPendingRequests(userID)
	views := make([]model.FriendRequestView, 0, len(pending))
	for _, req := range pending {
		views = append(views, model.FriendRequestView{
			FriendRequest: req,
			SenderName:    s.UserRepo.NameOf(req.SenderID),
		})
	}
	return views
}

func (s *FriendshipService) ListFriends(userID string) []model.FriendView {
	friends := s.FriendRepo.GetFriends(userID)
	views := make([]model.FriendView, 0, len(friends))
	for _, f := range friends {
		views = append(views, model.FriendView{
			Friendship: f,
			FriendName: s.UserRepo.NameOf(f.FriendID),
		})
	}
	return views
}

func (s *FriendshipService) RemoveFriend(userID, friendID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FriendRepo.DeleteFriendship(userID, friendID)
}

func (s *FriendshipService) AreFriends(userID, friendID string) bool {
	return s.FriendRepo.IsFriend(userID, friendID)
}
