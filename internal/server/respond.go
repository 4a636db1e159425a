package server

import (
	"errors"
	"log"

	"github.com/kataras/iris/v12"

	"github.com/example/autodrive/internal/service"
)

// fail 把业务错误映射为统一响应。未识别的错误按 500 处理，
// 只回通用文案，细节进日志不出网
func fail(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUserNotFound):
		ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateUser):
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
	default:
		log.Printf("%s %s failed: %v", ctx.Method(), ctx.Path(), err)
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": "服务器内部错误"})
	}
}
