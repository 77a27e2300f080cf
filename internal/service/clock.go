package service

import "time"

// Clock 提供当前时间，测试中可替换
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
