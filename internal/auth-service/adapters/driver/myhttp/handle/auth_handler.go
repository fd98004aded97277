package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hatbazar/internal/auth-service/core/domain/dto"
	"hatbazar/internal/auth-service/core/service"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/mylogger"
)

type AuthHandler struct {
	authService *service.AuthService
	mylog       mylogger.Logger
}

func NewAuthHandler(authService *service.AuthService, mylog mylogger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		mylog:       mylog,
	}
}

func (ah *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var regReq dto.UserRegistrationRequest

		mylog := ah.mylog.Action("Register")

		if err := json.NewDecoder(r.Body).Decode(&regReq); err != nil {
			mylog.Error("Failed to parse registration", err)
			jsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), WaitTime*time.Second)
		defer cancel()

		userId, accessToken, err := ah.authService.Register(ctx, regReq)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, map[string]string{
			"msg":        fmt.Sprintf("%s registered successfully!", regReq.Username),
			"jwt_access": accessToken,
			"user_id":    userId,
		})
		mylog.Info("Successfully registered!")
	}
}

func (ah *AuthHandler) RegisterVendor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var regReq dto.VendorRegistrationRequest

		mylog := ah.mylog.Action("RegisterVendor")

		if err := json.NewDecoder(r.Body).Decode(&regReq); err != nil {
			mylog.Error("Failed to parse registration", err)
			jsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), WaitTime*time.Second)
		defer cancel()

		vendorId, accessToken, err := ah.authService.RegisterVendor(ctx, regReq)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, map[string]string{
			"msg":        fmt.Sprintf("%s registered successfully!", regReq.BusinessName),
			"jwt_access": accessToken,
			"vendor_id":  vendorId,
		})
		mylog.Info("Vendor successfully registered!")
	}
}

func (ah *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var authReq dto.UserAuthRequest

		mylog := ah.mylog.Action("Login")

		if err := json.NewDecoder(r.Body).Decode(&authReq); err != nil {
			mylog.Error("Failed to parse auth", err)
			jsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), WaitTime*time.Second)
		defer cancel()

		accessToken, err := ah.authService.Login(ctx, authReq)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{
			"msg":        "Successfully login!",
			"jwt_access": accessToken,
		})
		mylog.Info("Successfully login!")
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRegistered),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrFieldIsEmpty):
		jsonError(w, http.StatusBadRequest, err)
	case errors.Is(err, geo.ErrInvalidLatitude),
		errors.Is(err, geo.ErrInvalidLongitude):
		jsonError(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrUnknownEmail),
		errors.Is(err, service.ErrPasswordUnknown):
		jsonError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
	case errors.Is(err, service.ErrVendorInactive):
		jsonError(w, http.StatusForbidden, err)
	default:
		jsonError(w, http.StatusInternalServerError, err)
	}
}
