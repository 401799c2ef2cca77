package model

import "time"

// File 学习资料
type File struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Subject    Subject   `json:"subject"`
	Semester   Semester  `json:"semester"`
	FileName   string    `json:"fileName"`
	FilePath   string    `json:"filePath"`
	ObjectKey  string    `json:"-"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}
