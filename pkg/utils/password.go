package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash 用于账号不存在时仍执行一次 bcrypt 比较，保持登录耗时一致
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// ErrPasswordTooLong bcrypt 只接受 72 字节以内的输入
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword 生成自描述的 bcrypt 哈希（算法/成本/盐都编码在结果里）
func HashPassword(pw string) (string, error) {
	return HashPasswordCost(pw, bcrypt.DefaultCost)
}

func HashPasswordCost(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("utils.HashPassword: %w", err)
	}
	return string(b), nil
}

// CheckPassword 常量时间比较；哈希格式不合法时返回 false
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// BurnPassword 对固定哈希做一次比较，结果丢弃
func BurnPassword(pw string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}
