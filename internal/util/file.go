package util

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectContentType 读取前 512 字节嗅探 MIME 类型，调用方需自行 Seek 回开头
func DetectContentType(reader io.Reader) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}

// AllowedExtension 检查上传文件扩展名
func AllowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SanitizeFilename 去掉路径与空格，避免写出存储目录
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.ReplaceAll(name, " ", "-")
}
