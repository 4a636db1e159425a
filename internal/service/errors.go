package service

import "errors"

// 业务错误哨兵，路由层用 errors.Is 映射为 HTTP 状态码。
// 校验失败一律发生在该操作的任何写入之前。
var (
	ErrCartNotFound       = errors.New("购物车不存在")
	ErrCartItemNotFound   = errors.New("购物车条目不存在")
	ErrProductNotFound    = errors.New("商品不存在")
	ErrCategoryNotFound   = errors.New("分类不存在")
	ErrOrderNotFound      = errors.New("试驾预约不存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInsufficientStock  = errors.New("商品库存不足")
	ErrEmptyCart          = errors.New("购物车为空")
	ErrInvalidQuantity    = errors.New("数量必须大于 0")
	ErrInvalidStatus      = errors.New("状态取值不合法")
	ErrDuplicateName      = errors.New("分类名称已存在")
	ErrDuplicateUser      = errors.New("用户名或邮箱已存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)
