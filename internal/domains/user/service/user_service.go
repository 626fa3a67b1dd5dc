package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"blog-backend/internal/domains/user/model"
	"blog-backend/internal/domains/user/repository"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/internal/shared"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
)

const (
	BcryptCost = 12

	// Login throttle: khóa login của username sau MaxLoginAttempts lần sai trong LoginWindow
	MaxLoginAttempts = 5
	LoginWindow      = 15 * time.Minute

	loginAttemptsKeyPrefix = "login_attempts:"
	revokedTokenKeyPrefix  = "revoked_token:"
)

type userService struct {
	repo     repository.Repository
	sessions cache.Cache
	jwt      *jwt.Manager
	queue    queue.Enqueuer // nil = không enqueue cleanup jobs
	cost     int
	now      func() time.Time
}

func NewUserService(
	repo repository.Repository,
	sessions cache.Cache,
	jwtManager *jwt.Manager,
	enqueuer queue.Enqueuer,
) Service {
	return &userService{
		repo:     repo,
		sessions: sessions,
		jwt:      jwtManager,
		queue:    enqueuer,
		cost:     BcryptCost,
		now:      time.Now,
	}
}

// ========================================
// SIGNUP
// ========================================

func (s *userService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	return s.register(ctx, req, model.RoleUser)
}

func (s *userService) EnsureAdmin(ctx context.Context, req model.SignupRequest) error {
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}
	_, err = s.register(ctx, req, model.RoleAdmin)
	return err
}

func (s *userService) register(ctx context.Context, req model.SignupRequest, role model.Role) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// ========== STEP 1: Uniqueness ==========
	taken, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, model.NewUsernameTakenError()
	}

	taken, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, model.NewEmailTakenError()
	}

	// ========== STEP 2: Hash password ==========
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// ========== STEP 3: Persist ==========
	u := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Race giữa check và insert: unique index vẫn chặn
		switch {
		case errors.Is(err, model.ErrUsernameTaken):
			return nil, model.NewUsernameTakenError()
		case errors.Is(err, model.ErrEmailTaken):
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"role":     u.Role.String(),
	})
	return u, nil
}

// ========================================
// LOGIN / LOGOUT
// ========================================

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	attemptsKey := loginAttemptsKeyPrefix + req.Username

	// ========== STEP 1: Throttle ==========
	var attempts int64
	if _, err := s.sessions.Get(ctx, attemptsKey, &attempts); err != nil {
		logger.Error("Login: read attempts failed", err)
	}
	if attempts >= MaxLoginAttempts {
		return nil, model.NewTooManyAttemptsError()
	}

	// ========== STEP 2: Verify credentials ==========
	u, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.recordFailedLogin(ctx, attemptsKey)
		return nil, model.NewInvalidCredentialsError()
	}

	if err := s.sessions.Delete(ctx, attemptsKey); err != nil {
		logger.Error("Login: reset attempts failed", err)
	}

	// ========== STEP 3: Issue token ==========
	token, claims, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Username, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        u.ToDTO(),
	}, nil
}

func (s *userService) recordFailedLogin(ctx context.Context, key string) {
	n, err := s.sessions.Increment(ctx, key)
	if err != nil {
		logger.Error("Login: increment attempts failed", err)
		return
	}
	if n == 1 {
		if err := s.sessions.Expire(ctx, key, LoginWindow); err != nil {
			logger.Error("Login: set attempts window failed", err)
		}
	}
	if n >= MaxLoginAttempts {
		logger.Warn("⚠️ Login locked", map[string]interface{}{"key": key, "attempts": n})
	}
}

func (s *userService) Logout(ctx context.Context, principal *shared.Principal) error {
	if principal == nil || principal.TokenID == "" {
		return nil
	}

	ttl := principal.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// Token đã hết hạn, không cần revoke
		return nil
	}
	if err := s.sessions.Set(ctx, revokedTokenKeyPrefix+principal.TokenID, true, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*shared.Principal, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, model.NewInvalidTokenError()
	}

	revoked, err := s.sessions.Exists(ctx, revokedTokenKeyPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revoked token: %w", err)
	}
	if revoked {
		return nil, model.NewInvalidTokenError()
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.NewInvalidTokenError()
	}

	p := &shared.Principal{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// ========================================
// LOOKUP / ADMIN
// ========================================

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("delete user: %w", err)
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id":  u.ID.String(),
		"username": u.Username,
	})

	s.enqueueDeleteImages(ctx, u.ID)
	return nil
}

// enqueueDeleteImages - lỗi enqueue chỉ log, không fail request (DB đã xóa xong)
func (s *userService) enqueueDeleteImages(ctx context.Context, authorID uuid.UUID) {
	if s.queue == nil {
		return
	}

	payload, err := json.Marshal(shared.DeletePostImagesPayload{AuthorID: authorID.String()})
	if err != nil {
		logger.Error("Marshal DeletePostImages payload failed", err)
		return
	}

	task := asynq.NewTask(shared.TypeDeletePostImages, payload)
	if _, err := s.queue.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(3),
	); err != nil {
		logger.Error("Enqueue DeletePostImages failed", err)
	}
}
