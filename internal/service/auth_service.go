package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/security"
	"Novii/internal/pkg/util"
	"Novii/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error)
	Login(ctx context.Context, req *dto.LoginDTO) (*dto.TokenDTO, error)
	Logout(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthServiceImpl struct {
	profileRepo  repository.ProfileRepo
	store        cache.Store
	profileIndex ProfileIndex
}

func NewAuthService(profileRepo repository.ProfileRepo, store cache.Store, profileIndex ProfileIndex) AuthService {
	return &AuthServiceImpl{
		profileRepo:  profileRepo,
		store:        store,
		profileIndex: profileIndex,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := util.NormalizeUsername(req.Username)
	if !util.ValidEmail(email) || !util.ValidUsername(username) || len(req.Password) < 8 {
		return nil, ErrParamInvalid
	}
	fullName, err := cleanOptionalText(req.FullName, consts.MaxFullNameLength)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		Username: username,
		FullName: fullName,
	}
	account := &model.Account{
		Email:        email,
		PasswordHash: hash,
	}
	if err = s.profileRepo.CreateProfileWithAccount(ctx, profile, account); err != nil {
		return nil, mapRepoError(err)
	}

	if s.profileIndex != nil {
		indexed := *profile
		go func() {
			if err := s.profileIndex.IndexProfile(context.Background(), &indexed); err != nil {
				log.Error("index profile error", "profileID", indexed.ID, "err", err)
			}
		}()
	}

	res, err := s.issueToken(profile)
	if err != nil {
		return nil, err
	}
	strength := security.MeasurePassword(req.Password).Label
	res.PasswordStrength = &strength

	log.InfoContext(ctx, "profile registered", "profileID", profile.ID, "username", profile.Username)
	return res, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginDTO) (*dto.TokenDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	account, err := s.profileRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrCredentialInvalid
	}

	if err = security.CheckPasswordHash(req.Password, account.PasswordHash); err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			return nil, ErrCredentialInvalid
		}
		return nil, err
	}

	profile, err := s.profileRepo.GetProfileByID(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return s.issueToken(profile)
}

// Logout 将 Token 签名加入黑名单，有效期与 Token 剩余时间一致
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return UnauthorizedError
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return UnauthorizedError
	}

	ttl := security.JWTExpirationTime
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.store.Set(ctx, consts.TokenRevokedKey+signature, "1", ttl)
}

func (s *AuthServiceImpl) IsRevoked(ctx context.Context, token string) (bool, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return true, nil
	}
	val, err := s.store.Get(ctx, consts.TokenRevokedKey+signature)
	if err != nil {
		return false, err
	}
	return val != "", nil
}

func (s *AuthServiceImpl) issueToken(profile *model.Profile) (*dto.TokenDTO, error) {
	token, err := security.GenerateToken(profile.ID, profile.Username)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{
		Token:   token,
		Profile: toProfileDTO(profile, false),
	}, nil
}
