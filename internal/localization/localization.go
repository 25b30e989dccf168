// Package localization holds the fixed per-language string tables used
// when composing answers. Unsupported language codes normalize to the
// default language.
package localization

import "strings"

// DefaultLanguage is used when the requested language is unsupported.
const DefaultLanguage = "en"

// SupportedLanguages is the set of language codes with full string tables.
var SupportedLanguages = map[string]struct{}{
	"en": {}, "hi": {}, "ta": {}, "te": {}, "bn": {},
}

// Localization keys.
const (
	KeyDisclaimer     = "disclaimer"
	KeyCriticalHeader = "critical_header"
	KeyCriticalBody   = "critical_body"
	KeyCriticalStep1  = "critical_steps_1"
	KeyCriticalStep2  = "critical_steps_2"
	KeyCriticalStep3  = "critical_steps_3"
	KeyNoInfo         = "no_info"
	KeyNoInfoStep1    = "no_info_step_1"
	KeyNoInfoStep2    = "no_info_step_2"
	KeyGroundedIntro  = "grounded_intro"
	KeyFollowUp       = "follow_up"
)

// NormalizeLanguage lowercases the code, strips a region qualifier
// ("hi-IN" -> "hi") and falls back to the default language for anything
// unsupported.
func NormalizeLanguage(language string) string {
	if language == "" {
		return DefaultLanguage
	}
	code := strings.ToLower(strings.TrimSpace(language))
	if idx := strings.Index(code, "-"); idx >= 0 {
		code = code[:idx]
	}
	if _, ok := SupportedLanguages[code]; ok {
		return code
	}
	return DefaultLanguage
}

// Localize returns the string for the key in the given language, falling
// back to English, then to the key itself.
func Localize(language, key string) string {
	lang := NormalizeLanguage(language)
	if text, ok := localizedText[lang][key]; ok {
		return text
	}
	if text, ok := localizedText[DefaultLanguage][key]; ok {
		return text
	}
	return key
}

var localizedText = map[string]map[string]string{
	"en": {
		KeyDisclaimer:     "This is preliminary health guidance, not a doctor replacement.",
		KeyCriticalHeader: "⚠️ Critical symptoms detected.",
		KeyCriticalBody:   "Please contact emergency services or visit the nearest health center immediately.",
		KeyCriticalStep1:  "Call local emergency support (ambulance/108).",
		KeyCriticalStep2:  "Do not delay. Reach the nearest hospital/PHC now.",
		KeyCriticalStep3:  "Carry any current prescriptions and patient records.",
		KeyNoInfo:         "I do not have enough verified information for this specific question.",
		KeyNoInfoStep1:    "Consult an ASHA worker, ANM, or a licensed doctor.",
		KeyNoInfoStep2:    "Use eSanjeevani or a nearby PHC for clinical advice.",
		KeyGroundedIntro:  "Based on verified health resources:",
		KeyFollowUp:       "If symptoms worsen or persist, seek in-person medical care.",
	},
	"hi": {
		KeyDisclaimer:     "यह प्रारंभिक स्वास्थ्य मार्गदर्शन है, डॉक्टर का विकल्प नहीं।",
		KeyCriticalHeader: "⚠️ गंभीर लक्षण पाए गए हैं।",
		KeyCriticalBody:   "कृपया तुरंत आपातकालीन सेवा से संपर्क करें या नज़दीकी स्वास्थ्य केंद्र जाएं।",
		KeyCriticalStep1:  "स्थानीय आपातकालीन सहायता (एम्बुलेंस/108) पर कॉल करें।",
		KeyCriticalStep2:  "देरी न करें। तुरंत नज़दीकी अस्पताल/PHC जाएं।",
		KeyCriticalStep3:  "चल रही दवाइयों और मेडिकल रिकॉर्ड साथ लें।",
		KeyNoInfo:         "इस प्रश्न के लिए मेरे पास पर्याप्त सत्यापित जानकारी नहीं है।",
		KeyNoInfoStep1:    "ASHA कार्यकर्ता, ANM या पंजीकृत डॉक्टर से सलाह लें।",
		KeyNoInfoStep2:    "क्लिनिकल सलाह के लिए eSanjeevani या नज़दीकी PHC का उपयोग करें।",
		KeyGroundedIntro:  "सत्यापित स्वास्थ्य स्रोतों के आधार पर:",
		KeyFollowUp:       "लक्षण बढ़ें या बने रहें तो व्यक्तिगत रूप से डॉक्टर से मिलें।",
	},
	"ta": {
		KeyDisclaimer:     "இது தொடக்கநிலை சுகாதார வழிகாட்டல்; மருத்துவருக்குப் பதிலல்ல.",
		KeyCriticalHeader: "⚠️ ஆபத்தான அறிகுறிகள் கண்டறியப்பட்டன.",
		KeyCriticalBody:   "உடனே அவசர சேவையை தொடர்புகொள்ளவும் அல்லது அருகிலுள்ள மருத்துவமனைக்கு செல்லவும்.",
		KeyCriticalStep1:  "உள்ளூர் அவசர உதவிக்கு (ஆம்புலன்ஸ்/108) அழைக்கவும்.",
		KeyCriticalStep2:  "தாமதிக்காமல் அருகிலுள்ள மருத்துவமனை/PHC-க்கு செல்லவும்.",
		KeyCriticalStep3:  "பயன்பாட்டில் உள்ள மருந்து மற்றும் மருத்துவ பதிவுகளை எடுத்துச் செல்லவும்.",
		KeyNoInfo:         "இந்த கேள்விக்கான உறுதி செய்யப்பட்ட தகவல் போதுமானதாக இல்லை.",
		KeyNoInfoStep1:    "ASHA பணியாளர், ANM அல்லது தகுதி பெற்ற மருத்துவரிடம் ஆலோசிக்கவும்.",
		KeyNoInfoStep2:    "eSanjeevani அல்லது அருகிலுள்ள PHC மூலம் ஆலோசனை பெறவும்.",
		KeyGroundedIntro:  "உறுதி செய்யப்பட்ட சுகாதார ஆதாரங்களின் அடிப்படையில்:",
		KeyFollowUp:       "அறிகுறிகள் நீடித்தால் நேரடியாக மருத்துவரை அணுகவும்.",
	},
	"te": {
		KeyDisclaimer:     "ఇది ప్రాథమిక ఆరోగ్య మార్గదర్శకం మాత్రమే; వైద్యుడికి ప్రత్యామ్నాయం కాదు.",
		KeyCriticalHeader: "⚠️ అత్యవసర లక్షణాలు గుర్తించబడ్డాయి.",
		KeyCriticalBody:   "దయచేసి వెంటనే అత్యవసర సేవలను సంప్రదించండి లేదా సమీప ఆరోగ్య కేంద్రానికి వెళ్లండి.",
		KeyCriticalStep1:  "స్థానిక అత్యవసర సేవ (అంబులెన్స్/108)కు కాల్ చేయండి.",
		KeyCriticalStep2:  "ఆలస్యం చేయకుండా సమీప ఆసుపత్రి/PHC కి వెళ్లండి.",
		KeyCriticalStep3:  "ప్రస్తుతం వాడుతున్న మందులు మరియు రికార్డులు వెంట తీసుకెళ్లండి.",
		KeyNoInfo:         "ఈ ప్రశ్నకు సరిపడిన ధృవీకరించిన సమాచారం నాకు లేదు.",
		KeyNoInfoStep1:    "ASHA వర్కర్, ANM లేదా లైసెన్స్ ఉన్న వైద్యుడిని సంప్రదించండి.",
		KeyNoInfoStep2:    "క్లినికల్ సలహా కోసం eSanjeevani లేదా సమీప PHC ను ఉపయోగించండి.",
		KeyGroundedIntro:  "ధృవీకరించిన ఆరోగ్య వనరుల ఆధారంగా:",
		KeyFollowUp:       "లక్షణాలు కొనసాగితే ప్రత్యక్ష వైద్య సహాయం పొందండి.",
	},
	"bn": {
		KeyDisclaimer:     "এটি প্রাথমিক স্বাস্থ্য সহায়তা, ডাক্তারের বিকল্প নয়।",
		KeyCriticalHeader: "⚠️ গুরুতর উপসর্গ শনাক্ত হয়েছে।",
		KeyCriticalBody:   "দয়া করে দ্রুত জরুরি পরিষেবায় যোগাযোগ করুন বা নিকটস্থ স্বাস্থ্যকেন্দ্রে যান।",
		KeyCriticalStep1:  "স্থানীয় জরুরি নম্বরে (অ্যাম্বুলেন্স/১০৮) ফোন করুন।",
		KeyCriticalStep2:  "দেরি না করে নিকটস্থ হাসপাতাল/PHC-তে যান।",
		KeyCriticalStep3:  "চলমান ওষুধ ও চিকিৎসা নথি সঙ্গে নিন।",
		KeyNoInfo:         "এই প্রশ্নের জন্য আমার কাছে পর্যাপ্ত যাচাই করা তথ্য নেই।",
		KeyNoInfoStep1:    "ASHA কর্মী, ANM বা নিবন্ধিত ডাক্তারের পরামর্শ নিন।",
		KeyNoInfoStep2:    "ক্লিনিকাল পরামর্শের জন্য eSanjeevani বা নিকটস্থ PHC ব্যবহার করুন।",
		KeyGroundedIntro:  "যাচাইকৃত স্বাস্থ্য উৎসের ভিত্তিতে:",
		KeyFollowUp:       "উপসর্গ বাড়লে বা থাকলে সরাসরি চিকিৎসা নিন।",
	},
}
