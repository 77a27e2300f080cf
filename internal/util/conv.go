package util

import (
	"strconv"
)

// ParseID 将路径参数转换为无符号整数 ID，非法或为 0 时返回错误
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return uint(id), nil
}
