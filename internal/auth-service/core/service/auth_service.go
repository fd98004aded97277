package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hatbazar/internal/auth-service/core/domain/dto"
	"hatbazar/internal/auth-service/core/domain/models"
	"hatbazar/internal/auth-service/core/ports"
	"hatbazar/internal/config"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/mylogger"

	"github.com/golang-jwt/jwt"
)

const tokenTTL = time.Hour * 24 * 7

type AuthService struct {
	ctx      context.Context
	cfg      *config.Config
	authRepo ports.IAuthRepo
	mylog    mylogger.Logger
}

func NewAuthService(
	ctx context.Context,
	cfg *config.Config,
	authRepo ports.IAuthRepo,
	mylog mylogger.Logger,
) *AuthService {
	return &AuthService{
		ctx:      ctx,
		cfg:      cfg,
		authRepo: authRepo,
		mylog:    mylog,
	}
}

// Register creates a requester account and returns its id plus a
// signed access token.
func (as *AuthService) Register(ctx context.Context, regReq dto.UserRegistrationRequest) (string, string, error) {
	mylog := as.mylog.Action("Register")

	if err := validateRegistration(regReq.Username, regReq.Email, regReq.Password); err != nil {
		return "", "", err
	}

	hashedPassword, err := hashPassword(regReq.Password)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %v", err)
	}
	user := models.User{
		Username:     regReq.Username,
		Email:        regReq.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	id, err := as.authRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailRegistered) {
			mylog.Warn("Failed to register, duplicate username or email")
			return "", "", err
		}
		mylog.Error("Failed to save user in db", err)
		return "", "", fmt.Errorf("cannot save user in db: %w", err)
	}

	accessToken, err := as.signToken(id, regReq.Email, models.RoleUser)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", "", err
	}

	mylog.Info("User registered successfully")
	return id, accessToken, nil
}

// RegisterVendor creates a vendor account together with its business
// profile. Vendor coordinates go through the same bounds check as
// demand coordinates.
func (as *AuthService) RegisterVendor(ctx context.Context, regReq dto.VendorRegistrationRequest) (string, string, error) {
	mylog := as.mylog.Action("RegisterVendor")

	if err := validateRegistration(regReq.Username, regReq.Email, regReq.Password); err != nil {
		return "", "", err
	}
	if regReq.BusinessName == "" {
		return "", "", fmt.Errorf("invalid business name: %w", ErrFieldIsEmpty)
	}
	if regReq.Latitude == nil || regReq.Longitude == nil {
		return "", "", fmt.Errorf("invalid location: %w", ErrFieldIsEmpty)
	}
	location := geo.Coordinate{Latitude: *regReq.Latitude, Longitude: *regReq.Longitude}
	if err := location.Validate(); err != nil {
		return "", "", err
	}

	hashedPassword, err := hashPassword(regReq.Password)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %v", err)
	}
	user := models.User{
		Username:     regReq.Username,
		Email:        regReq.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleVendor,
	}
	profile := models.VendorProfile{
		Name:         regReq.Username,
		Email:        regReq.Email,
		BusinessName: regReq.BusinessName,
		Category:     regReq.Category,
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
	}

	id, err := as.authRepo.CreateVendor(ctx, user, profile)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailRegistered) {
			mylog.Warn("Failed to register vendor, duplicate username or email")
			return "", "", err
		}
		mylog.Error("Failed to save vendor in db", err)
		return "", "", fmt.Errorf("cannot save vendor in db: %w", err)
	}

	accessToken, err := as.signToken(id, regReq.Email, models.RoleVendor)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", "", err
	}

	mylog.Info("Vendor registered successfully")
	return id, accessToken, nil
}

func (as *AuthService) Login(ctx context.Context, authReq dto.UserAuthRequest) (string, error) {
	mylog := as.mylog.Action("Login")

	if err := validateLogin(authReq.Email, authReq.Password); err != nil {
		return "", err
	}

	user, err := as.authRepo.GetByEmail(ctx, authReq.Email)
	if err != nil {
		if errors.Is(err, ErrUnknownEmail) {
			mylog.Warn("Failed to login, unknown email")
			return "", err
		}
		mylog.Error("Failed to look the user up", err)
		return "", fmt.Errorf("cannot look the user up: %w", err)
	}

	if !checkPassword(user.PasswordHash, authReq.Password) {
		mylog.Debug("Failed to login, wrong password")
		return "", ErrPasswordUnknown
	}

	if user.Role == models.RoleVendor {
		active, err := as.authRepo.IsVendorActive(ctx, user.UserId)
		if err != nil {
			mylog.Error("cannot check vendor activity", err)
			return "", fmt.Errorf("cannot check vendor activity: %w", err)
		}
		if !active {
			mylog.Warn("Failed to login, vendor deactivated")
			return "", ErrVendorInactive
		}
	}

	accessToken, err := as.signToken(user.UserId, authReq.Email, user.Role)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", err
	}

	mylog.Info("User login successfully")
	return accessToken, nil
}

func (as *AuthService) signToken(userId, email, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(as.cfg.App.JwtSecret))
}
