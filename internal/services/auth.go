package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/normalization"
	"github.com/dhg/hub-backend/internal/repos"
	"github.com/dhg/hub-backend/internal/requestdata"
	"github.com/dhg/hub-backend/internal/types"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, displayName string) (*types.User, error)
	// LoginUser returns (accessToken, refreshToken).
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	// SetContextFromToken validates the JWT and attaches RequestData for
	// downstream handlers. Token rows are checked so a logged-out access
	// token is dead even before its JWT expiry.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) RegisterUser(ctx context.Context, email, password, displayName string) (*types.User, error) {
	email = normalization.ParseInputString(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    string(hashed),
		DisplayName: strings.TrimSpace(displayName),
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := as.userRepo.Create(ctx, tx, []*types.User{user})
		return cErr
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	as.log.Info("User registered", "userID", user.ID)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return "", "", ErrInvalidCredentials
	}
	user := users[0]

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", "", ErrInvalidCredentials
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Drop expired token rows for this user before issuing a new pair.
		found, fErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if fErr != nil {
			return fmt.Errorf("check user tokens: %w", fErr)
		}
		expired := make([]uuid.UUID, 0, len(found))
		for _, t := range found {
			if t.ExpiresAt.Before(time.Now()) {
				expired = append(expired, t.ID)
			}
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, expired); dErr != nil {
			return fmt.Errorf("delete expired tokens: %w", dErr)
		}

		sessionID := uuid.New()
		tok, gErr := as.generateAccessToken(user.ID, sessionID)
		if gErr != nil {
			return fmt.Errorf("generate access token: %w", gErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		userToken := &types.UserToken{
			ID:           sessionID,
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		_, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken})
		return cErr
	})
	if err != nil {
		return "", "", err
	}

	as.log.Info("User logged in", "userID", user.ID)
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", ErrInvalidToken
	}

	tokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, nil, []string{rd.RefreshToken})
	if err != nil {
		return "", "", fmt.Errorf("load refresh token: %w", err)
	}
	if len(tokens) == 0 || tokens[0].ExpiresAt.Before(time.Now()) {
		return "", "", ErrInvalidToken
	}
	old := tokens[0]

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{old.ID}); dErr != nil {
			return fmt.Errorf("rotate refresh token: %w", dErr)
		}

		sessionID := uuid.New()
		tok, gErr := as.generateAccessToken(old.UserID, sessionID)
		if gErr != nil {
			return fmt.Errorf("generate access token: %w", gErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		userToken := &types.UserToken{
			ID:           sessionID,
			UserID:       old.UserID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		_, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken})
		return cErr
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return ErrInvalidToken
	}
	if rd.SessionID != uuid.Nil {
		return as.userTokenRepo.DeleteByIDs(ctx, nil, []uuid.UUID{rd.SessionID})
	}
	return as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, ErrInvalidToken
	}

	userIDStr, _ := claims["user_id"].(string)
	sessionIDStr, _ := claims["session_id"].(string)
	userID, uErr := uuid.Parse(userIDStr)
	sessionID, sErr := uuid.Parse(sessionIDStr)
	if uErr != nil || sErr != nil {
		return ctx, ErrInvalidToken
	}

	// Session row must still exist: logout kills the token immediately.
	rows, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("check session: %w", err)
	}
	if len(rows) == 0 {
		return ctx, ErrInvalidToken
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateAccessToken(userID, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    userID.String(),
		"session_id": sessionID.String(),
		"iat":        now.Unix(),
		"exp":        now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
