package model

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateCode 生成 n 位大写分享码（n 不超过 32）
func GenerateCode(n int) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	if n > len(raw) {
		n = len(raw)
	}
	return strings.ToUpper(raw[:n])
}
