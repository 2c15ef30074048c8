package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUsernameTaken は、ユーザー名が既に登録済みの場合に返されます。
var ErrUsernameTaken = errors.New("username already taken")

// Store はユーザーレコードをリレーショナルストアに保存します。
type Store struct {
	db *gorm.DB
}

// NewStore は Store を作成します。
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate はユーザーテーブルを作成します（存在する場合は何もしません）。
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&User{})
}

// Create はハッシュ化済みパスワードを持つユーザーを作成します。
// ユーザー名が既に存在する場合は ErrUsernameTaken を返します。
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	existing, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// 同時登録の競合はユニーク制約で弾かれる
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// FindByUsername はユーザー名でユーザーを検索します。存在しない場合は nil を返します。
func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID はIDでユーザーを検索します。存在しない場合は nil を返します。
func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
