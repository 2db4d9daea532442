package service

import "errors"

var (
	ErrFollowSelf    = errors.New("cannot follow self")
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// normalizePage 页码与页大小兜底；limit 上限 100
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
