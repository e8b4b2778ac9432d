package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-account-service/internal/adapter/gin/middleware"
	"user-account-service/internal/adapter/mail"
	domain "user-account-service/internal/domain/user"
	"user-account-service/internal/usecase/user"
	apperrors "user-account-service/pkg/errors"
	"user-account-service/pkg/logger"
	"user-account-service/pkg/response"
	"user-account-service/pkg/security"
	"user-account-service/pkg/token"
)

// Messages returned to clients.
const (
	msgSignupCreated      = "Kindly confirm the link sent to your email account to complete your registration"
	msgSigninOK           = "Login successful."
	msgVerified           = "Your account has been verified"
	msgProfileUpdated     = "user account updated successfully"
	msgProfileRetrieved   = "user account retrieved successfully"
	msgDatabaseError      = "database error"
	msgInvalidCredentials = "invalid credentials"
	msgInvalidVerifyToken = "invalid or expired verification token"
	msgVerifyMismatch     = "verification token does not match this account"
	msgNotAllowedEdit     = "You are not allowed to edit this profile"
	msgNotAllowedSee      = "You are not allowed to see this profile"
	msgUserNotFound       = "user not found"
)

// MailDispatcher sends a message without blocking the caller.
type MailDispatcher interface {
	Dispatch(ctx context.Context, msg mail.Message)
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc         user.Usecase
	tokens     token.Helper
	composer   mail.Composer
	dispatcher MailDispatcher
	log        *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, tokens token.Helper, composer mail.Composer, dispatcher MailDispatcher, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:         uc,
		tokens:     tokens,
		composer:   composer,
		dispatcher: dispatcher,
		log:        log,
	}
}

// SignupRequest represents the HTTP request body for creating an account
type SignupRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=191"`
	Password  string `json:"password" binding:"required,max=72"`
}

// SigninRequest represents the HTTP request body for logging in
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the HTTP request body for a profile update.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	Gender            *string `json:"gender"`
	BirthDate         *string `json:"birthDate"`
	PreferredLanguage *string `json:"preferredLanguage"`
	PreferredCurrency *string `json:"preferredCurrency"`
	Address           *string `json:"address"`
	Department        *string `json:"department"`
	LineManager       *string `json:"lineManager"`
	PhoneNumber       *string `json:"phoneNumber"`
}

// SignupPayload is returned after a successful signup
type SignupPayload struct {
	Token     string `json:"token"`
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SigninPayload is the sanitized user plus a fresh token
type SigninPayload struct {
	Token string `json:"token"`
	domain.PublicUser
}

// Signup handles POST /api/v1/users
func (h *UserHandler) Signup(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid signup request", zap.Error(err))
		response.Error(http.StatusBadRequest, err.Error()).Send(c)
		return
	}

	u, err := h.uc.Signup(c.Request.Context(), user.SignupRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			response.Error(http.StatusBadRequest, err.Error()).Send(c)
			return
		}
		// duplicates are not distinguished so signup cannot be used to probe for accounts
		log.Error("signup failed", zap.Error(err))
		response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
		return
	}

	tok, err := h.tokens.Generate(token.Claims{ID: u.ID, Email: u.Email})
	if err != nil {
		log.Error("failed to issue signup token", zap.Int64("id", u.ID), zap.Error(err))
		response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
		return
	}

	h.dispatcher.Dispatch(c.Request.Context(), h.composer.ComposeVerificationMail(u.Email, c.Request.Host, tok))

	response.Success(http.StatusCreated, msgSignupCreated, SignupPayload{
		Token:     tok,
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}).Send(c)
}

// Signin handles POST /api/v1/users/login
func (h *UserHandler) Signin(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid signin request", zap.Error(err))
		response.Error(http.StatusBadRequest, err.Error()).Send(c)
		return
	}

	u, err := h.uc.Signin(c.Request.Context(), user.SigninRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case apperrors.IsAuthentication(err):
			response.Error(http.StatusUnauthorized, msgInvalidCredentials).Send(c)
		case apperrors.IsValidation(err):
			response.Error(http.StatusBadRequest, err.Error()).Send(c)
		default:
			log.Error("signin failed", zap.Error(err))
			response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
		}
		return
	}

	verified := u.IsVerified
	tok, err := h.tokens.Generate(token.Claims{ID: u.ID, Email: u.Email, IsVerified: &verified, Role: u.Role})
	if err != nil {
		log.Error("failed to issue signin token", zap.Int64("id", u.ID), zap.Error(err))
		response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
		return
	}

	response.Success(http.StatusOK, msgSigninOK, SigninPayload{Token: tok, PublicUser: u.Sanitized()}).Send(c)
}

// VerifyEmail handles GET /api/v1/users/verifyEmail/:token
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	claims, err := h.tokens.Verify(c.Param("token"))
	if err != nil {
		log.Warn("verification token rejected", zap.Error(err))
		response.Error(http.StatusUnauthorized, msgInvalidVerifyToken).Send(c)
		return
	}

	u, err := h.uc.FindUser(ctx, claims.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			response.Error(http.StatusBadRequest, msgVerifyMismatch).Send(c)
			return
		}
		log.Error("failed to load user for verification", zap.Int64("id", claims.ID), zap.Error(err))
		response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
		return
	}

	if u.Email != security.NormalizeEmail(claims.Email) {
		log.Warn("verification token email mismatch", zap.Int64("id", claims.ID))
		response.Error(http.StatusBadRequest, msgVerifyMismatch).Send(c)
		return
	}

	if err := h.uc.VerifyEmail(ctx, u.Email); err != nil {
		if apperrors.IsNotFound(err) {
			response.Error(http.StatusBadRequest, msgVerifyMismatch).Send(c)
			return
		}
		log.Error("failed to verify email", zap.Int64("id", u.ID), zap.Error(err))
		response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
		return
	}

	response.Success(http.StatusOK, msgVerified, nil).Send(c)
}

// UpdateProfile handles PUT /api/v1/users/:email
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	identity, err := h.authorize(c, msgNotAllowedEdit)
	if err != nil {
		h.respondProfileError(c, log, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid update profile request", zap.Error(err))
		response.Error(http.StatusBadRequest, err.Error()).Send(c)
		return
	}
	if req.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*req.Gender))
		req.Gender = &g
	}

	u, err := h.uc.UpdateProfile(ctx, user.UpdateProfileRequest{
		ID:                identity.ID,
		Email:             identity.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Gender:            req.Gender,
		BirthDate:         req.BirthDate,
		PreferredLanguage: req.PreferredLanguage,
		PreferredCurrency: req.PreferredCurrency,
		Address:           req.Address,
		Department:        req.Department,
		LineManager:       req.LineManager,
		PhoneNumber:       req.PhoneNumber,
	})
	if err != nil {
		h.respondProfileError(c, log, err)
		return
	}

	response.Success(http.StatusCreated, msgProfileUpdated, u.Sanitized()).Send(c)
}

// RetrieveProfile handles GET /api/v1/users/:email
func (h *UserHandler) RetrieveProfile(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	identity, err := h.authorize(c, msgNotAllowedSee)
	if err != nil {
		h.respondProfileError(c, log, err)
		return
	}

	u, err := h.uc.RetrieveUser(ctx, identity.ID, identity.Email)
	if err != nil {
		h.respondProfileError(c, log, err)
		return
	}

	response.Success(http.StatusOK, msgProfileRetrieved, u.Sanitized()).Send(c)
}

// authorize returns the caller's identity when it owns the :email path segment.
// Otherwise it returns an AuthorizationError carrying denial.
func (h *UserHandler) authorize(c *gin.Context, denial string) (*token.Claims, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, apperrors.NewAuthorizationError(denial)
	}

	email := security.NormalizeEmail(identity.Email)
	if email == "" || email != security.NormalizeEmail(c.Param("email")) {
		logger.WithContext(c.Request.Context(), h.log).Warn("profile access denied",
			zap.Int64("id", identity.ID),
			zap.String("path_email", c.Param("email")),
		)
		return nil, apperrors.NewAuthorizationError(denial)
	}

	return &token.Claims{ID: identity.ID, Email: email}, nil
}

// respondProfileError converts usecase errors to the profile endpoints' responses
func (h *UserHandler) respondProfileError(c *gin.Context, log *zap.Logger, err error) {
	switch status := apperrors.StatusOf(err); status {
	case http.StatusBadRequest, http.StatusUnauthorized:
		response.Error(status, err.Error()).Send(c)
	case http.StatusNotFound:
		response.Error(status, msgUserNotFound).Send(c)
	default:
		log.Error("profile operation failed", zap.Error(err))
		response.Error(http.StatusInternalServerError, msgDatabaseError).Send(c)
	}
}
