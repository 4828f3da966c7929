package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag    = "notblank"
	budgetRangeTag = "budget_range"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// В ошибках используются имена полей из JSON.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(rfpRequestStructValidation, models.RFPRequest{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, budgetRangeTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomErrs)
	}
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case budgetRangeTag:
		return "Maximum budget must be greater than or equal to minimum budget"
	}
	return ""
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// rfpRequestStructValidation проверяет, что бюджет задан корректным диапазоном.
func rfpRequestStructValidation(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(models.RFPRequest)
	if !ok || req.BudgetMin == nil || req.BudgetMax == nil {
		return
	}
	if *req.BudgetMax < *req.BudgetMin {
		sl.ReportError(req.BudgetMax, "budgetMax", "BudgetMax", budgetRangeTag, "")
	}
}

// checkStruct валидирует структуру и возвращает ошибку с описанием полей.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}
	issues := make([]models.FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, models.FieldIssue{Field: fe.Field(), Message: fe.Translate(translator)})
	}
	return models.NewFieldValidationError(issues)
}
