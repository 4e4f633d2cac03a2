package langtable

import (
	"fmt"
	"strings"

	"github.com/postcareplus/postcare-sms/internal/langtable"
)

// StaticTable is the Kinyarwanda language table. Templates and keyword
// lists are admin-maintained content, not logic; the conversation core
// only sees the Table interface.
type StaticTable struct {
	templates         map[string]string
	painLevels        map[int]string
	emergencyKeywords []string
	questionKeywords  []string
}

func NewKinyarwandaTable() langtable.Table {
	return &StaticTable{
		templates:         kinyarwandaTemplates,
		painLevels:        kinyarwandaPainLevels,
		emergencyKeywords: kinyarwandaEmergencyKeywords,
		questionKeywords:  kinyarwandaQuestionKeywords,
	}
}

func (t *StaticTable) IsEmergencyPhrase(text string) bool {
	return containsAnyKeyword(text, t.emergencyKeywords)
}

func (t *StaticTable) IsQuestionPhrase(text string) bool {
	return containsAnyKeyword(text, t.questionKeywords)
}

func containsAnyKeyword(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func (t *StaticTable) Render(key string, params map[string]string) string {
	tmpl, ok := t.templates[key]
	if !ok {
		return key
	}
	for name, value := range params {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", value)
	}
	return tmpl
}

func (t *StaticTable) PainLevelDescription(level float64) string {
	if desc, ok := t.painLevels[int(level)]; ok {
		return desc
	}
	return fmt.Sprintf("ububabare %g", level)
}

var kinyarwandaTemplates = map[string]string{
	langtable.KeyWelcome: "Muraho {name}, murakaza neza kuri PostCare+! Tuzakurikirana uko mukira nyuma y'ubuganga. Tuzagira ubusanzwe tubabajije uko mukira kugira ngo twizere ko mukira neza.",

	langtable.KeyMainMenu: `Muraho {name}! Hitamo icyo ushaka:
1. Gutanga amakuru y'ubuzima
2. Kubaza ikibazo mu buzima
3. Gusaba ubufasha bw'ihutirwa
4. Kureba uko mukira
5. Kuvugana n'umuganga
0. Kuva`,

	langtable.KeyInvalidSelection: "Ntibigezweho {name}! Hitamo umubare muri aya:",

	langtable.KeyPainPrompt: `Muraho {name}! Tuzagukusanya amakuru y'ubuzima bwawe.

Ubanza, twubaze ku bubabare:
Ni gute ububabare bwawe ubu? (Hitamo umubare)

1 = Nta bubabare
2-3 = Ububabare buke
4-6 = Ububabare bwo hagati
7-8 = Ububabare bukomeye
9-10 = Ububabare bukabije

Subiza n'umubare gusa (1-10):`,

	langtable.KeyWoundPrompt: `Murakoze {name}! Ububabare: {pain_description}

Ubwo, gukira kw'ikibago cyawe:
Ni gute ikibago cyawe gikira? (Hitamo umubare)

1-3 = Ntikiri neza (gitukura, gisukuye)
4-6 = Gikira gahoro
7-8 = Gikira neza
9-10 = Girakira neza cyane

Subiza n'umubare gusa (1-10):`,

	langtable.KeyTemperaturePrompt: `Murakoze {name}! Gukira kw'ikibago: {wound}/10

Ubwo, umushyuha wawe:
Ni angahe umushyuha wawe?

Urugero: 36.5, 37.0, 38.2

Subiza n'umushyuha wawe mu degrees Celsius:`,

	langtable.KeyMobilityPrompt: `Murakoze {name}! Umushyuha: {temperature}°C

Ubwo, ubushobozi bwawe bwo kugenda:
Ni gute ubushobozi bwawe bwo kugenda no gukora?

1-3 = Sinshobora kugenda neza
4-6 = Ngenda gahoro
7-8 = Ngenda neza
9-10 = Ngenda nk'ubusanzwe

Subiza n'umubare gusa (1-10):`,

	langtable.KeyRepromptRange:       "Nyabuneka subiza n'umubare gusa kuva {min} kugeza {max}:",
	langtable.KeyRepromptTemperature: "Nyabuneka subiza n'umushyuha mwiza. Urugero: 36.5, 37.0, 38.5:",

	langtable.KeyVitalsSummary: `Murakoze cyane {name}! Twakusanyije amakuru yawe:

• Ububabare: {pain}/10
• Gukira kw'ikibago: {wound}/10
• Umushyuha: {temperature}°C
• Ubushobozi bwo kugenda: {mobility}/10

Ubu ushobora kutwandikira ikibazo cyose cyangwa icyo ubabaje ku buzima bwawe:`,

	langtable.KeyFreeConversationPrompt: "Ubu ushobora kutwandikira ikibazo cyose cyangwa icyo ubabaje ku buzima bwawe. Tuzagusubiza ubunahi tunagufasha:",

	langtable.KeyEmergencyPrompt: `🚨 {name}, turi mu bwoba bw'ihutirwa.

Ni iki kinabaye? Subiza n'amakuru arambuye:
- Ububabare bukomeye?
- Umuriro mukomeye?
- Amaraso?
- Ubushobozi buke bwo guhumeka?
- Ikindi kintu gikomeye?

Twese turagusubiza vuba!`,

	langtable.KeyEmergencyDetected: `🚨 BYIHUTIRWA! {name}

Twabonye ko wavuze ikibazo gikomeye. Tugiye kwihutira gufasha:

1. Hamagara umuganga wawe VUBA
2. Cyangwa jya mu bitaro byihutirwa
3. Hamagara: 912 (ihutirwa)

Tugiye kumenyesha umuganga wawe UBUNYANGAMUGAYO!

Komeza utubwire ibindi byimbitse:`,

	langtable.KeyEmergencyResponse: "🚨 {name}, twakiriye ubutumwa bwawe bw'ihutirwa. Abaganga bamaze kumenyeshwa. Komeza utubwire ibindi byimbitse cyangwa uhamagare 912:",

	langtable.KeyRecoveryStatus: `Muraho {name}! Uko mukira:

📊 Raporo y'ubuzima bwawe:
• Ububabare bugabanye: ✅
• Ikibago gikira: ✅
• Umushyuha usanzwe: ✅

Komeza ukurikiza amahoro na muganga!

Hitamo ikindi:
1. Gutanga amakuru mashya
2. Kubaza ikibazo
0. Kurangiza`,

	langtable.KeyDoctorConnect: `Muraho {name}!

🩺 Guhana umuganga:
Tugiye kumenyesha umuganga wawe ko usaba kuvugana nawe.
Azagukurikira mu gitondo cya mbere (saa 2-4).

Hari ikindi ushaka?
1. Gutanga amakuru y'ubuzima
2. Kubaza ikibazo
0. Kurangiza`,

	langtable.KeyGoodbye:        "Murakoze gukoresha PostCare+. Niba mufite andi makuru, mutwandikire. Mwizere neza!",
	langtable.KeyUnknownPatient: "Muraho! Ntibaguzi muri sisitemu ya PostCare. Nyabuneka hamagara umuganga wawe kugira ngo abafashe.",

	langtable.KeyQuestionReply: "Murakoze kubaza, {name}. {advice} Niba ibimenyetso bikomeje cyangwa bisibangana, hamagara umuganga wawe.",
	langtable.KeyGeneralReply:  "Murakoze kutwandikira, {name}. {advice} Komeza utubwire uko wiyumva.",

	langtable.KeyProviderAlert: `🚨 UMURWAYI ASABA UBWITABIRE: {patient_name} ({phone})
Ibimenyetso: {alerts}
Ukomeretse: {severity}/10
Amakuru: {detail}

Nyabuneka mukurikire uyu murwayi.`,

	langtable.KeyCHWReport: `📋 RAPORO: {patient_name} ({phone})
Urwego: {level}
Ibimenyetso: {alerts}
Amakuru: {detail}

Nyabuneka mukurikire uyu murwayi.`,

	langtable.KeyDailySummary: `📊 RAPORO Y'UMUNSI - PostCare+
📅 {date}

📈 IBIMENYETSO BYA LEO:
🚨 Byihutirwa: {emergency}
⚠️ Bikomeye: {high}
📋 Bisanzwe: {medium}
✅ Byoroshye: {low}

📊 IGITERANYO: {total} abakuraguzi

Murakoze gukora PostCare+!`,

	langtable.KeyAdviceHighPain:     "Ububabare bukomeye: Fata imiti yo kuraguza ububabare nk'uko muganga yagusabye. Niba bukomeje, hamagara muganga.",
	langtable.KeyAdvicePoorWound:    "Ikibago gikira nabi: Kora ku karere gutukura, komeza gufata imiti ya antibiotike, hamagara muganga niba kikomeje gusiba.",
	langtable.KeyAdviceFever:        "Umuriro: Nywa amazi menshi, ruhuka, fata imiti yo kugabanya umuriro. Niba uri hejuru ya 38.5°C cg ukomeje iminsi myinshi, hamagara muganga.",
	langtable.KeyAdviceLowMobility:  "Ubushobozi buke bwo kugenda: Baza bigenda buhoro, kora siporo idahari, saba ubufasha mu kugenda niba bibaye ngombwa.",
	langtable.KeyAdviceGoodRecovery: "Ukiri neza! Komeza gufata imiti yawe, rya ibiryo byiza, uruhuke bihagije, kandi ujye gusuzuma umuganga nk'uko byagenwe.",
	langtable.KeyAdviceGeneralCare:  "Komeza gufata imiti yawe nk'uko byasabwe, rya ibiryo byiza, uruhuke bihagije, kandi uhoberana akarere k'ikibago gatukura.",
}

var kinyarwandaPainLevels = map[int]string{
	1:  "nta bubabare (1)",
	2:  "ububabare buke (2)",
	3:  "ububabare buke (3)",
	4:  "ububabare bwiza (4)",
	5:  "ububabare bwo hagati (5)",
	6:  "ububabare bukomeye (6)",
	7:  "ububabare bukomeye cyane (7)",
	8:  "ububabare bukabije (8)",
	9:  "ububabare bukabije cyane (9)",
	10: "ububabare budasubirwaho (10)",
}

var kinyarwandaEmergencyKeywords = []string{
	"byihutirwa", "kubabara cyane", "sinshobora", "ndarwaye cyane",
	"umuriro mukomeye", "ntabwo nshobora kugenda", "ikibazo gikomeye",
	"mfite ubwoba", "nsaba ubufasha", "ibimenyetso bibi",
}

var kinyarwandaQuestionKeywords = []string{
	"niki", "nigute", "ryari", "hehe", "kubera iki", "ese",
	"mbwira", "nsabe", "mfasha", "ikibazo", "mba",
}
