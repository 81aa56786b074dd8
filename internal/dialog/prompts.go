package dialog

import (
	"strings"

	"github.com/spigell/scheme-navigator/internal/profile"
)

const DefaultLanguage = "en"

var greetings = map[string]string{
	"en": "Hello! I'm your assistant for discovering government welfare schemes. I'll ask you a few questions to understand your needs and find schemes you're eligible for. Let's get started!",
	"hi": "नमस्ते! मैं सरकारी कल्याण योजनाओं की खोज के लिए आपका सहायक हूं। मैं आपकी आवश्यकताओं को समझने और आपके लिए उपयुक्त योजनाओं को खोजने के लिए कुछ प्रश्न पूछूंगा। चलिए शुरू करते हैं!",
}

var questions = map[profile.Field]map[string]string{
	profile.FieldAge: {
		"en": "How old are you?",
		"hi": "आपकी उम्र क्या है?",
	},
	profile.FieldRegion: {
		"en": "Which state do you live in?",
		"hi": "आप किस राज्य में रहते हैं?",
	},
	profile.FieldEducation: {
		"en": "What is your highest education level? (e.g., below 10th, 10th pass, 12th pass, graduate, postgraduate)",
		"hi": "आपकी उच्चतम शिक्षा स्तर क्या है? (जैसे, 10वीं से कम, 10वीं पास, 12वीं पास, स्नातक, स्नातकोत्तर)",
	},
	profile.FieldIncome: {
		"en": "What is your annual household income range? (e.g., below 1 lakh, 1-3 lakh, 3-5 lakh, 5-8 lakh, above 8 lakh)",
		"hi": "आपकी वार्षिक घरेलू आय सीमा क्या है? (जैसे, 1 लाख से कम, 1-3 लाख, 3-5 लाख, 5-8 लाख, 8 लाख से अधिक)",
	},
	profile.FieldCategory: {
		"en": "What is your social category? (General, SC, ST, OBC)",
		"hi": "आपकी सामाजिक श्रेणी क्या है? (सामान्य, अनुसूचित जाति, अनुसूचित जनजाति, अन्य पिछड़ा वर्ग)",
	},
	profile.FieldGender: {
		"en": "What is your gender? (male, female, other)",
		"hi": "आपका लिंग क्या है? (पुरुष, महिला, अन्य)",
	},
	profile.FieldOccupation: {
		"en": "What is your occupation? (e.g., student, farmer, self-employed, unemployed)",
		"hi": "आपका व्यवसाय क्या है? (जैसे, छात्र, किसान, स्व-रोजगार, बेरोजगार)",
	},
}

// SupportedLanguages lists languages with a full prompt table.
var SupportedLanguages = []string{"en", "hi"}

// NormalizeLanguage returns a supported language tag, defaulting to English.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := greetings[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

func Greeting(lang string) string {
	return greetings[NormalizeLanguage(lang)]
}

func Question(f profile.Field, lang string) string {
	texts := questions[f]
	if q, ok := texts[NormalizeLanguage(lang)]; ok {
		return q
	}
	return texts[DefaultLanguage]
}
