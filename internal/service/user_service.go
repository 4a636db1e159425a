package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/autodrive/internal/auth"
	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/datamodels/user"
)

// UserService 用户注册/登录与资料维护
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

// RegisterRequest 注册入参
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
}

// Register 注册新用户并签发 JWT。用户名与邮箱均不允许重复
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*user.User, string, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, "", ErrDuplicateUser
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrDuplicateUser
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &user.User{
		Username: req.Username,
		Password: string(hash),
		Email:    req.Email,
		Phone:    req.Phone,
		FullName: req.FullName,
		Address:  req.Address,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrDuplicateUser
		}
		return nil, "", err
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login 校验口令并签发 JWT。用户不存在与密码错误返回同一个错误，
// 不向调用方暴露哪个环节失败
func (s *UserService) Login(ctx context.Context, username, password string) (*user.User, string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetByID 查询用户
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListAll 列出全部用户
func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

// UpdateRequest 资料更新入参，空字段不更新
type UpdateRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
}

// Update 更新用户资料，带密码时重新哈希
func (s *UserService) Update(ctx context.Context, id int64, req *UpdateRequest) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hash)
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.FullName != "" {
		u.FullName = req.FullName
	}
	if req.Address != "" {
		u.Address = req.Address
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return u, nil
}

// Delete 删除用户
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
