package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 默认有效期
const DefaultTTL = 30 * time.Minute

var (
	ErrNoSecret         = errors.New("jwt secret is empty")
	ErrUnsupportedAlg   = errors.New("unsupported signing algorithm")
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

var methods = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// Claims：sub 为邮箱，roles 为签发时刻的角色快照
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret    []byte
	Algorithm string // HS256 / HS384 / HS512，空则 HS256
	Issuer    string
	TTL       time.Duration
	Now       func() time.Time // 测试注入时钟
}

// NewJWTer 校验配置后返回签发器
func NewJWTer(secret, alg, issuer string, ttl time.Duration) (*JWTer, error) {
	j := &JWTer{Secret: []byte(secret), Algorithm: alg, Issuer: issuer, TTL: ttl}
	if _, err := j.method(); err != nil {
		return nil, err
	}
	if len(j.Secret) == 0 {
		return nil, ErrNoSecret
	}
	return j, nil
}

// SupportedAlg 供配置校验使用
func SupportedAlg(alg string) bool {
	if alg == "" {
		return true
	}
	_, ok := methods[alg]
	return ok
}

func (j *JWTer) method() (jwt.SigningMethod, error) {
	alg := j.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	m, ok := methods[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
	return m, nil
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) ttl() time.Duration {
	if j.TTL <= 0 {
		return DefaultTTL
	}
	return j.TTL
}

func (j *JWTer) Issue(subject string, roles []string) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrNoSecret
	}
	m, err := j.method()
	if err != nil {
		return "", err
	}
	if roles == nil {
		roles = []string{}
	}
	now := j.now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl())),
		},
	}
	return jwt.NewWithClaims(m, claims).SignedString(j.Secret)
}

// Parse 先验签再验过期；错误统一归类为 ErrMalformed / ErrInvalidSignature / ErrExpired
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	m, err := j.method()
	if err != nil {
		return nil, err
	}
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(j.now),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != m.Alg() {
			return nil, fmt.Errorf("unexpected alg %s", token.Method.Alg())
		}
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" {
		return nil, ErrMalformed
	}
	return c, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		// issuer 不匹配、缺 exp 等视为结构问题
		return ErrMalformed
	}
}
