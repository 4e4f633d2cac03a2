package langtable

// Template keys understood by a Table implementation. Patient-facing
// templates take their parameters as {name}-style placeholders.
const (
	KeyWelcome                = "welcome"
	KeyMainMenu               = "main_menu"
	KeyInvalidSelection       = "invalid_selection"
	KeyPainPrompt             = "pain_prompt"
	KeyWoundPrompt            = "wound_prompt"
	KeyTemperaturePrompt      = "temperature_prompt"
	KeyMobilityPrompt         = "mobility_prompt"
	KeyRepromptRange          = "reprompt_range"
	KeyRepromptTemperature    = "reprompt_temperature"
	KeyVitalsSummary          = "vitals_summary"
	KeyFreeConversationPrompt = "free_conversation_prompt"
	KeyEmergencyPrompt        = "emergency_prompt"
	KeyEmergencyDetected      = "emergency_detected"
	KeyEmergencyResponse      = "emergency_response"
	KeyRecoveryStatus         = "recovery_status"
	KeyDoctorConnect          = "doctor_connect"
	KeyGoodbye                = "goodbye"
	KeyUnknownPatient         = "unknown_patient"
	KeyQuestionReply          = "question_reply"
	KeyGeneralReply           = "general_reply"
	KeyProviderAlert          = "provider_alert"
	KeyCHWReport              = "chw_report"
	KeyDailySummary           = "daily_summary"

	KeyAdviceHighPain     = "advice_high_pain"
	KeyAdvicePoorWound    = "advice_poor_wound"
	KeyAdviceFever        = "advice_fever"
	KeyAdviceLowMobility  = "advice_low_mobility"
	KeyAdviceGoodRecovery = "advice_good_recovery"
	KeyAdviceGeneralCare  = "advice_general_care"
)

// Table resolves message templates and recognizes emergency and question
// phrasing for one patient language. Detection is a case-insensitive
// substring match against a fixed keyword list.
type Table interface {
	IsEmergencyPhrase(text string) bool
	IsQuestionPhrase(text string) bool
	Render(key string, params map[string]string) string
	PainLevelDescription(level float64) string
}
