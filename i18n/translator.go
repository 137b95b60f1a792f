package i18n

// Translator retrieves localized message templates for error codes. Templates
// may contain {token} placeholders that the caller interpolates; unknown codes
// must be returned unchanged so free-form templates pass through.
type Translator interface {
	Message(code string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "required":
			return "{field}は必須です。"
		case "invalid_type":
			return "{field}は有効な{type}ではありません。"
		case "not_null":
			return "{field}はnullでなければなりません。"
		case "too_short":
			return "{field}は{min}文字以上でなければなりません。"
		case "too_long":
			return "{field}は{max}文字以下でなければなりません。"
		case "too_small":
			return "{field}は{min}以上でなければなりません。"
		case "too_big":
			return "{field}は{max}以下でなければなりません。"
		case "not_multiple":
			return "{field}は{multiple}の倍数でなければなりません。"
		case "too_few_items":
			return "{field}は{min}件以上でなければなりません。"
		case "too_many_items":
			return "{field}は{max}件以下でなければなりません。"
		case "pattern":
			return "{field}の形式が正しくありません。"
		case "invalid_enum":
			return "{field}は次のいずれかでなければなりません: {enum}。"
		case "invalid_format":
			return "{field}は有効な{format}ではありません。"
		case "extra_property":
			return "{field}に不明なプロパティがあります: {properties}。"
		case "discriminator_missing":
			return "{field}が指定されていません。"
		case "discriminator_unknown":
			return "{field}は有効な識別値ではありません。"
		case "invalid":
			return "{field}は不正です。"
		}
	default: // "en"
		switch code {
		case "required":
			return "{field} is required."
		case "invalid_type":
			return "{field} is not a valid {type}."
		case "not_null":
			return "{field} should be null."
		case "too_short":
			return "{field} must be at least {min} {min,plural,character} long."
		case "too_long":
			return "{field} must be at most {max} {max,plural,character} long."
		case "too_small":
			return "{field} must be at least {min}."
		case "too_big":
			return "{field} must be at most {max}."
		case "not_multiple":
			return "{field} must be a multiple of {multiple}."
		case "too_few_items":
			return "{field} must have at least {min} {min,plural,item}."
		case "too_many_items":
			return "{field} must have at most {max} {max,plural,item}."
		case "pattern":
			return "{field} does not match the expected pattern."
		case "invalid_enum":
			return "{field} must be one of: {enum}."
		case "invalid_format":
			return "{field} is not a valid {format}."
		case "extra_property":
			return "{field} has extraneous properties: {properties}."
		case "discriminator_missing":
			return "{field} is missing."
		case "discriminator_unknown":
			return "{field} is not a valid discriminator value."
		case "invalid":
			return "{field} is invalid."
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message template for the given code using the current Translator.
func T(code string) string { return currentTranslator.Message(code) }
