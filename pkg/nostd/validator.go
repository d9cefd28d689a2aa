package nostd

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zhtrans "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator echo参数校验器，错误信息本地化
type CustomValidator struct {
	Validator *validator.Validate
	trans     ut.Translator
}

// TransInit 初始化翻译器
func (cv *CustomValidator) TransInit() error {
	zhT := zh.New()
	uni := ut.New(zhT, zhT)

	trans, ok := uni.GetTranslator("zh")
	if !ok {
		return fmt.Errorf("failed to get zh translator")
	}
	cv.trans = trans

	return zhtrans.RegisterDefaultTranslations(cv.Validator, trans)
}

// Validate 校验结构体并翻译首条错误
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.Validator.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return fmt.Errorf("%s", validationErrors[0].Translate(cv.trans))
	}
	return err
}
