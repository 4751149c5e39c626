package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/cache"
	"github.com/paritbhardwaj019/pathosaathi/pkg/jwtutil"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Uniform client-facing messages. Credential failures never reveal whether
// the email, phone or password was wrong; lock, inactive and domain failures
// are distinct reasons.
const (
	msgInvalidCredentials = "invalid credentials"
	msgAccountLocked      = "account is temporarily locked, try again later"
	msgAccountInactive    = "account is inactive"
	msgDomainMismatch     = "login is not permitted from this domain"
)

// Service implements credential authentication, the account lock policy and
// domain-bound token issuance.
type Service struct {
	router   *tenant.Router
	jwt      *jwtutil.JWT
	sessions *cache.Store
	// platformDomain is the issuer and the audience for root users.
	platformDomain string
	sessionTTL     time.Duration
	now            func() time.Time
}

// NewService creates the auth service.
func NewService(router *tenant.Router, jwt *jwtutil.JWT, sessions *cache.Store, platformDomain string, sessionTTL time.Duration) *Service {
	return &Service{
		router:         router,
		jwt:            jwt,
		sessions:       sessions,
		platformDomain: platformDomain,
		sessionTTL:     sessionTTL,
		now:            time.Now,
	}
}

// LoginInput carries the credentials of one login attempt.
type LoginInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	User      *model.User        `json:"user"`
	Tokens    *jwtutil.TokenPair `json:"tokens"`
	SessionID string             `json:"session"`
}

// Login runs the full attempt pipeline: credential lookup, lock check,
// password check, domain check, token issue. The only side effects before
// success are the attempt counter and lock timestamp on password failure.
func (s *Service) Login(ctx context.Context, tc *tenant.Context, in LoginInput) (*LoginResult, error) {
	prometheus.LoginCounter.Inc()

	if in.Email == "" && in.Phone == "" {
		return nil, apperr.Validation("email or phone is required")
	}
	if in.Password == "" {
		return nil, apperr.Validation("password is required")
	}

	users, err := s.router.Handle(tc.TenantPrefix, tenant.EntityUser)
	if err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, users, in.Email, in.Phone)
	if err != nil {
		prometheus.RecordAuthError("invalid_credentials")
		return nil, err
	}

	now := s.now()
	if user.IsLocked(now) {
		prometheus.RecordAuthError("account_locked")
		return nil, apperr.Authentication(msgAccountLocked)
	}
	if !user.IsActive {
		prometheus.RecordAuthError("account_inactive")
		return nil, apperr.Authentication(msgAccountInactive)
	}

	if !user.CheckPassword(in.Password) {
		if err := s.recordFailedAttempt(ctx, users, user, now); err != nil {
			logger.FromContext(ctx).Error("failed to record login attempt", zap.Error(err))
		}
		prometheus.RecordAuthError("invalid_credentials")
		return nil, apperr.Authentication(msgInvalidCredentials)
	}

	partner, err := s.loadPartner(ctx, user.PartnerID)
	if err != nil {
		return nil, err
	}

	isRoot := user.Role == model.RoleSuperadmin || (partner != nil && partner.IsRootTenant)
	partnerDomain := ""
	if partner != nil {
		partnerDomain = partner.Domain(s.platformDomain)
	}
	if err := s.checkDomainPolicy(tc, isRoot, partnerDomain); err != nil {
		prometheus.RecordAuthError("domain_mismatch")
		return nil, err
	}
	if partner != nil && !partner.IsActive && !isRoot {
		prometheus.RecordAuthError("partner_inactive")
		return nil, apperr.Authentication(msgAccountInactive)
	}

	sessionID := uuid.New().String()
	pair, err := s.issue(user, partner, isRoot, partnerDomain, tc.TenantPrefix, sessionID)
	if err != nil {
		return nil, apperr.Internal("failed to issue tokens", err)
	}

	// Final commit: clear the lock state and stamp the visit.
	updates := map[string]interface{}{
		"login_attempts": 0,
		"lock_until":     nil,
		"last_login_at":  now,
		"ip_address":     in.IP,
	}
	if err := users.DB().WithContext(ctx).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed to finalize login", err)
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLoginAt = &now

	s.registerSession(ctx, sessionID, tc.TenantPrefix, user.ID)
	prometheus.ActiveSessionsGauge.Inc()

	return &LoginResult{User: user, Tokens: pair, SessionID: sessionID}, nil
}

func (s *Service) findUser(ctx context.Context, users *tenant.Handle, email, phone string) (*model.User, error) {
	q := users.DB().WithContext(ctx)
	switch {
	case email != "" && phone != "":
		q = q.Where("email = ? OR phone = ?", strings.ToLower(email), phone)
	case email != "":
		q = q.Where("email = ?", strings.ToLower(email))
	default:
		q = q.Where("phone = ?", phone)
	}

	var user model.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authentication(msgInvalidCredentials)
		}
		return nil, apperr.Internal("failed to look up user", err)
	}
	return &user, nil
}

// recordFailedAttempt applies the lock policy exactly once per failed
// password and persists the resulting counter and lock window.
func (s *Service) recordFailedAttempt(ctx context.Context, users *tenant.Handle, user *model.User, now time.Time) error {
	updates := user.RegisterFailedLogin(now)
	return users.DB().WithContext(ctx).Where("id = ?", user.ID).Updates(updates).Error
}

func (s *Service) loadPartner(ctx context.Context, partnerID *uint) (*model.Partner, error) {
	if partnerID == nil {
		return nil, nil
	}
	partners, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return nil, err
	}
	var partner model.Partner
	if err := partners.DB().WithContext(ctx).First(&partner, *partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authentication(msgInvalidCredentials)
		}
		return nil, apperr.Internal("failed to load partner", err)
	}
	return &partner, nil
}

// checkDomainPolicy enforces where an account may authenticate from: root
// users only from the main domains, partner users from their partner's
// configured domain, partners without a domain fall back to the main domain.
func (s *Service) checkDomainPolicy(tc *tenant.Context, isRoot bool, partnerDomain string) error {
	if isRoot {
		if !tc.IsMainDomain {
			return apperr.Authentication(msgDomainMismatch)
		}
		return nil
	}
	if partnerDomain != "" {
		if !strings.EqualFold(tc.Hostname, partnerDomain) {
			return apperr.Authentication(msgDomainMismatch)
		}
		return nil
	}
	if !tc.IsMainDomain {
		return apperr.Authentication(msgDomainMismatch)
	}
	return nil
}

func (s *Service) issue(user *model.User, partner *model.Partner, isRoot bool, partnerDomain, tenantPrefix, sessionID string) (*jwtutil.TokenPair, error) {
	audience := s.platformDomain
	if !isRoot && partnerDomain != "" {
		audience = partnerDomain
	}

	return s.jwt.GeneratePair(jwtutil.Subject{
		UserID:        user.ID,
		Role:          user.Role,
		PartnerID:     user.PartnerID,
		PartnerDomain: partnerDomain,
		TenantPrefix:  tenantPrefix,
		IsRootUser:    isRoot,
		SessionID:     sessionID,
		Audience:      audience,
	})
}

// Refresh re-validates the domain binding and account state, then re-issues
// a pair under the original session id.
func (s *Service) Refresh(ctx context.Context, tc *tenant.Context, refreshToken string) (*LoginResult, error) {
	prometheus.RefreshCounter.Inc()

	claims, err := s.jwt.Validate(refreshToken)
	if err != nil {
		prometheus.RecordAuthError("invalid_refresh_token")
		if errors.Is(err, jwtutil.ErrExpiredToken) {
			return nil, apperr.Authentication("refresh token expired")
		}
		return nil, apperr.Authentication("invalid refresh token")
	}
	if claims.TokenType != jwtutil.TokenTypeRefresh {
		prometheus.RecordAuthError("invalid_refresh_token")
		return nil, apperr.Authentication("invalid refresh token")
	}
	if err := s.jwt.VerifyAudience(claims, tc.Hostname); err != nil {
		prometheus.RecordAuthError("domain_mismatch")
		return nil, apperr.Authentication(msgDomainMismatch)
	}

	users, err := s.router.Handle(claims.TenantPrefix, tenant.EntityUser)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := users.DB().WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return nil, apperr.Authentication("invalid refresh token")
	}
	if !user.IsActive || user.IsLocked(s.now()) {
		return nil, apperr.Authentication(msgAccountInactive)
	}

	partner, err := s.loadPartner(ctx, user.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner != nil && !partner.IsActive && !claims.IsRootUser {
		return nil, apperr.Authentication(msgAccountInactive)
	}

	partnerDomain := ""
	if partner != nil {
		partnerDomain = partner.Domain(s.platformDomain)
	}

	pair, err := s.issue(&user, partner, claims.IsRootUser, partnerDomain, claims.TenantPrefix, claims.SessionID)
	if err != nil {
		return nil, apperr.Internal("failed to issue tokens", err)
	}

	return &LoginResult{User: &user, Tokens: pair, SessionID: claims.SessionID}, nil
}

// VerifyAccess validates a bearer token against the resolved tenant context.
func (s *Service) VerifyAccess(tc *tenant.Context, token string) (*jwtutil.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		if errors.Is(err, jwtutil.ErrExpiredToken) {
			return nil, apperr.Authentication("token expired")
		}
		return nil, apperr.Authentication("invalid token")
	}
	if claims.TokenType != jwtutil.TokenTypeAccess {
		return nil, apperr.Authentication("invalid token")
	}
	if err := s.jwt.VerifyAudience(claims, tc.Hostname); err != nil {
		return nil, apperr.Authentication(msgDomainMismatch)
	}
	return claims, nil
}

// GetUser loads the user behind a set of claims.
func (s *Service) GetUser(ctx context.Context, claims *jwtutil.Claims) (*model.User, error) {
	users, err := s.router.Handle(claims.TenantPrefix, tenant.EntityUser)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := users.DB().WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return &user, nil
}

// Logout drops the session from the registry. Best effort only; the active
// session gauge moves only when a registered session was actually removed.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	removed, err := s.sessions.Delete(ctx, sessionKey(sessionID))
	if err != nil {
		logger.FromContext(ctx).Warn("failed to drop session", zap.Error(err))
		return
	}
	if removed > 0 {
		prometheus.ActiveSessionsGauge.Dec()
	}
}

func (s *Service) registerSession(ctx context.Context, sessionID, tenantPrefix string, userID uint) {
	value := fmt.Sprintf("%s:%d", tenantPrefix, userID)
	if err := s.sessions.Set(ctx, sessionKey(sessionID), value, s.sessionTTL); err != nil {
		logger.FromContext(ctx).Warn("failed to register session", zap.Error(err))
	}
}

func sessionKey(id string) string {
	return "session:" + id
}
