package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"desk-wallet/pkg/address"
	"desk-wallet/pkg/errno"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// engine 表单与 HTTP 请求共用 binding 标签, 直接解析表单时也走同一套规则
func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		register(validate)
	})
	return validate
}

// Init 把自定义规则注册到 gin 的校验引擎上
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		_, err := address.Normalize(fl.Field().String())
		return err == nil
	})
	// 收款方: 地址或 @命名空间
	_ = v.RegisterValidation("recipient", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.HasPrefix(s, "@") {
			return len(s) > 1
		}
		_, err := address.Normalize(s)
		return err == nil
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
}

// Struct 校验表单, 失败时返回包装了 errno.ErrValidation 的错误
func Struct(v interface{}) error {
	if err := engine().Struct(v); err != nil {
		return fmt.Errorf("%w: %s", errno.ErrValidation, GetErrorMsg(err))
	}
	return nil
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			param := e.Param()

			switch tag {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 至少为 %s", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能超过 %s", field, param))
			case "oneof":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 [%s] 之一", field, param))
			case "address", "recipient":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是有效的地址", field))
			case "amount":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是有效的数量", field))
			case "hexadecimal":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 Hex", field))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, tag))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
