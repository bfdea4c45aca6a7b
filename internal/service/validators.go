package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
)

// 自定义校验标签
const (
	notBlankTag    = "notblank"
	decPositiveTag = "dec_positive"
)

// maxWeeklyHours 单条补充课时上限
var maxWeeklyHours = decimal.NewFromInt(168)

// newValidator 创建服务层输入校验器
func newValidator() *validator.Validate {
	v := validator.New()

	// 错误信息使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	v.RegisterStructValidation(supplementalHoursValidation, dto.SupplementalHoursInput{})
	return v
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// supplementalHoursValidation 课时必须大于 0 且不超过一周总小时数
func supplementalHoursValidation(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(dto.SupplementalHoursInput)
	if !ok {
		return
	}
	if !in.Hours.IsPositive() || in.Hours.GreaterThan(maxWeeklyHours) {
		sl.ReportError(in.Hours, "hours", "Hours", decPositiveTag, "")
	}
}

// describeValidation 将校验错误压缩为一行可读信息
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
