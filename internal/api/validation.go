package api

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 注册 wallet 校验：0x 前缀 + 40 位十六进制
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		addr := fl.Field().String()
		if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
			return false
		}
		for _, r := range addr[2:] {
			switch {
			case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			default:
				return false
			}
		}
		return true
	})
}
