package escalation

import "github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"

// Localized hand-off sentences spoken before transferring to an expert.
var messages = map[Reason]map[lexicon.Language]string{
	ReasonExplicitRequest: {
		lexicon.Hinglish: "Bilkul! Main aapko abhi expert se connect karti hoon.",
		lexicon.English:  "Absolutely! I'll connect you with an expert right away.",
		lexicon.Telugu:   "Avunu! Nenu mimmalini expert tho ippude connect chestanu.",
	},
	ReasonNegativeSentiment: {
		lexicon.Hinglish: "Main samajh sakti hoon ki aap frustrated feel kar rahe hain. Chaliye main aapko expert se connect karti hoon.",
		lexicon.English:  "I understand you might be feeling frustrated. Let me connect you with an expert.",
		lexicon.Telugu:   "Meeru frustrated ga feel avutunnaru ani naku artham aindi. Nenu mimmalini expert tho connect chestanu.",
	},
	ReasonClarificationThreshold: {
		lexicon.Hinglish: "Main samajh sakti hoon ki yeh thoda confusing ho sakta hai. Chaliye main aapko expert se connect karti hoon jo better explain kar sakenge.",
		lexicon.English:  "I understand this might be a bit confusing. Let me connect you with an expert who can explain better.",
		lexicon.Telugu:   "Idi konchem confusing ga undavachu ani naku artham aindi. Nenu mimmalini expert tho connect chestanu, varu better explain chestaru.",
	},
	ReasonAggressiveTone: {
		lexicon.Hinglish: "Main aapki frustration samajh sakti hoon. Chaliye main aapko expert se connect karti hoon.",
		lexicon.English:  "I understand your frustration. Let me connect you with an expert.",
		lexicon.Telugu:   "Mee frustration naku artham aindi. Nenu mimmalini expert tho connect chestanu.",
	},
	ReasonComplexQuery: {
		lexicon.Hinglish: "Yeh query thodi complex hai. Chaliye main aapko expert se connect karti hoon jo isme better help kar sakenge.",
		lexicon.English:  "This query is a bit complex. Let me connect you with an expert who can help better.",
		lexicon.Telugu:   "Ee query konchem complex undi. Nenu mimmalini expert tho connect chestanu, varu better help chestaru.",
	},
	ReasonSystemError: {
		lexicon.Hinglish: "Mujhe kuch technical issue aa raha hai. Chaliye main aapko expert se connect karti hoon.",
		lexicon.English:  "I'm experiencing some technical issues. Let me connect you with an expert.",
		lexicon.Telugu:   "Naku konni technical issues vastunnai. Nenu mimmalini expert tho connect chestanu.",
	},
}

// Message returns the localized hand-off sentence for a reason. Unknown
// reasons fall back to the explicit-request family; a language without an
// entry falls back to English.
func Message(reason Reason, language lexicon.Language) string {
	byLanguage, ok := messages[reason]
	if !ok {
		byLanguage = messages[ReasonExplicitRequest]
	}
	if msg, ok := byLanguage[language]; ok {
		return msg
	}
	return byLanguage[lexicon.English]
}
