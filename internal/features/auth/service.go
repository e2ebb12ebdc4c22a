package auth

import (
	"context"
	"errors"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/access"
	"go-marketplace/internal/features/audit"
	"go-marketplace/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

// LoginResult carries both credentials; clients may use either
type LoginResult struct {
	Token     string        `json:"token"`
	SessionID string        `json:"sessionId"`
	Admin     *models.Admin `json:"admin"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type AuthServiceImpl struct {
	Admins       AdminStore
	Tokens       *utils.TokenIssuer
	Sessions     access.SessionStore
	AuditService audit.AuditService
	logger       *zap.Logger
	now          func() time.Time
}

func NewAuthService(admins AdminStore, tokens *utils.TokenIssuer, sessions access.SessionStore, auditService audit.AuditService, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Admins:       admins,
		Tokens:       tokens,
		Sessions:     sessions,
		AuditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

// Login refuses unknown emails, wrong passwords, and inactive or deleted
// accounts with the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.Admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, apperr.Internal("find admin", err)
	}
	if !utils.CheckPassword(admin.PasswordHash, password) || !admin.Usable() {
		s.logger.Info("admin login refused", zap.String("adminId", admin.ID.Hex()))
		return nil, apperr.ErrUnauthenticated
	}

	token, err := s.Tokens.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	sessionID, err := s.Sessions.Create(ctx, admin.ID)
	if err != nil {
		return nil, apperr.Internal("create session", err)
	}

	now := s.now()
	if err := s.Admins.Update(ctx, admin.ID, bson.M{"last_login": now}); err != nil {
		s.logger.Warn("failed to record last login", zap.String("adminId", admin.ID.Hex()), zap.Error(err))
	}
	admin.LastLogin = &now

	actorCtx := context.WithValue(ctx, models.AdminIDKey, admin.ID.Hex())
	_ = s.AuditService.LogChange(actorCtx, models.AuditActionLogin, "admins", admin.ID.Hex(), nil)
	s.logger.Info("admin logged in", zap.String("adminId", admin.ID.Hex()))

	return &LoginResult{Token: token, SessionID: sessionID, Admin: admin}, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.Sessions.Revoke(ctx, sessionID); err != nil {
		return apperr.Internal("revoke session", err)
	}
	return nil
}
