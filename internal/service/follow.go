package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

// FollowService owns the directed user -> user follow graph.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow inserts a follower -> followed edge and returns the followed user.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uuid.UUID) (*models.User, error) {
	if followerID == followedID {
		return nil, ErrSelfFollow
	}

	var followed models.User
	if err := s.db.WithContext(ctx).First(&followed, "id = ?", followedID).Error; err != nil {
		return nil, err
	}

	exists, err := s.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFollowing
	}

	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		return nil, err
	}
	return &followed, nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	var followed models.User
	if err := s.db.WithContext(ctx).First(&followed, "id = ?", followedID).Error; err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// IsFollowing reports whether the follower -> followed edge exists.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

// Following returns the set of user ids the follower follows, for batch
// is_subscribed flags.
func (s *FollowService) Following(ctx context.Context, followerID uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	followed := make(map[uuid.UUID]bool)
	if len(userIDs) == 0 {
		return followed, nil
	}

	var edges []models.Follow
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id IN ?", followerID, userIDs).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		followed[e.FollowedID] = true
	}
	return followed, nil
}

// Subscriptions returns a page of users the follower follows, most recent
// edge first, plus the total count.
func (s *FollowService) Subscriptions(ctx context.Context, followerID uuid.UUID, limit, offset int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", followerID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := base.
		Order("follows.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}
