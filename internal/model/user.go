package model

// UserRole 由身份提供方签发，引擎只读取不校验
type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)
