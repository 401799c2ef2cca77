package util

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

// EncodeSharePayload 将分享对象编码为 URL 参数可携带的 base64(UTF-8 JSON)
func EncodeSharePayload(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeSharePayload 解码分享参数，兼容 URL 中 '+' 被替换为空格的情况
func DecodeSharePayload(payload string, v interface{}) error {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ErrInvalidSharePayload
	}
	if unescaped, err := url.QueryUnescape(payload); err == nil && strings.Contains(payload, "%") {
		payload = unescaped
	}
	payload = strings.ReplaceAll(payload, " ", "+")

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidSharePayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrInvalidSharePayload
	}
	return nil
}

// ShareURL 拼接导入链接
func ShareURL(baseURL, payload string) string {
	return strings.TrimRight(baseURL, "/") + "/study-schedule?import=" + url.QueryEscape(payload)
}
