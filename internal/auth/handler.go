// Package auth は登録・ログイン・ログアウトと保護ルートの認証を提供します。
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-demo/internal/session"
	"github.com/yourusername/login-demo/internal/user"
)

const (
	// SessionCookieName はセッショントークンを運ぶクッキー名です。
	SessionCookieName = "session_id"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager は認証処理とストアへの参照をまとめた構造体です。
type Manager struct {
	users        *user.Store
	sessions     *session.Store
	bcryptCost   int
	secureCookie bool
}

// NewManager は認証マネージャーを作成します。
func NewManager(users *user.Store, sessions *session.Store, bcryptCost int, secureCookie bool) *Manager {
	return &Manager{
		users:        users,
		sessions:     sessions,
		bcryptCost:   bcryptCost,
		secureCookie: secureCookie,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
}

// Register は POST /register のハンドラーです。
// ユーザー名が既に存在する場合は 409 を返します。
func (m *Manager) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username と password を JSON で送ってください",
		})
		return
	}

	hash, err := HashPassword(req.Password, m.bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "パスワードのハッシュ化に失敗しました",
		})
		return
	}

	created, err := m.users.Create(c.Request.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"code":    "USERNAME_TAKEN",
				"message": "このユーザー名は既に使われています",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "ユーザーの作成に失敗しました",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       created.ID,
		"username": created.Username,
	})
}

// Login は POST /login のハンドラーです。
// 認証に成功するとセッショントークンを発行し、クッキーとレスポンスボディで返します。
func (m *Manager) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username と password を JSON で送ってください",
		})
		return
	}

	found, err := m.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "ユーザーの取得に失敗しました",
		})
		return
	}
	// ユーザー不在とパスワード不一致は区別せずに返す
	if found == nil || !VerifyPassword(found.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_CREDENTIALS",
			"message": "ユーザー名またはパスワードが正しくありません",
		})
		return
	}

	token, err := m.sessions.Create(c.Request.Context(), found.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return
	}

	m.setSessionCookie(c, token, int(m.sessions.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"username": found.Username,
	})
}

// Logout は POST /logout のハンドラーです。
// トークンの有無にかかわらず成功します（冪等）。
func (m *Manager) Logout(c *gin.Context) {
	token := extractToken(c)
	if token != "" {
		if err := m.sessions.Delete(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "SESSION_DELETE_FAILED",
				"message": "セッションの削除に失敗しました",
			})
			return
		}
	}

	m.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"message": "ログアウトしました",
	})
}

// Protected は GET /protected のハンドラーです。RequireSession の後段で動作します。
func (m *Manager) Protected(c *gin.Context) {
	username := c.GetString(ContextUserKey)
	c.JSON(http.StatusOK, gin.H{
		"message":  "ようこそ、保護されたページです",
		"username": username,
	})
}

// Home は GET / のハンドラーです。ログイン状態を返します。
func (m *Manager) Home(c *gin.Context) {
	username, _ := m.currentUsername(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": username != "",
		"username":      username,
	})
}

// currentUsername はリクエストのトークンからユーザー名を解決します。
// 未ログインの場合は空文字列を返します（エラーにはしません）。
func (m *Manager) currentUsername(c *gin.Context) (string, error) {
	token := extractToken(c)
	if token == "" {
		return "", nil
	}
	userID, err := m.sessions.Get(c.Request.Context(), token)
	if err != nil || userID == "" {
		return "", err
	}
	found, err := m.users.FindByID(c.Request.Context(), userID)
	if err != nil || found == nil {
		return "", err
	}
	return found.Username, nil
}

func (m *Manager) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", m.secureCookie, true)
}

// extractToken はクッキーまたは Authorization ヘッダーからトークンを取り出します。
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader(authorizationHeader)
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return ""
}
