package verifier

import "github.com/careline-ai/careline/internal/lexicon"

// bank holds the candidate reply templates per module. Each template takes
// the matched topical phrases as its single argument.
var bank = map[lexicon.Module][]string{
	lexicon.ModuleWarningSigns: {
		"從您描述的「%s」來看，這些狀況值得留意。建議安排神經科或記憶門診的醫療評估，及早了解是正常老化還是失智症的警訊。您已經做得很好了，持續的觀察與理解是最重要的支持。",
		"您提到的「%s」可以先記錄發生的頻率與情境，並預約醫療評估。過程中請保持耐心，專業團隊會協助您釐清狀況，不需要獨自承擔。",
	},
	lexicon.ModuleStage: {
		"從「%s」的描述，可以與醫療團隊討論目前的認知障礙程度，安排完整的專業評估。了解所處階段後，照護安排會更有方向，我們一步一步來。",
		"關於「%s」，建議記錄近期的日常變化，回診時與醫師討論。每位長輩的步調不同，您的陪伴對長輩來說非常重要。",
	},
	lexicon.ModuleBPSD: {
		"您描述的「%s」是失智症常見的行為心理症狀，這些行為背後通常有原因。請先確保彼此的安全，保持耐心與理解，並將發生的情境記錄下來，回診時與專業團隊討論。",
		"面對「%s」的狀況，辛苦您了。建議安排醫療評估確認是否需要調整治療，平時可嘗試轉移注意力、維持規律作息。您的支持與耐心對長輩非常重要。",
	},
	lexicon.ModuleCareResources: {
		"關於「%s」，建議先撥打長照專線 1966 申請評估，並聯絡各縣市的失智共同照護中心，他們會協助安排合適的服務與資源。申請時記得準備診斷證明與身分文件。",
		"針對「%s」的需求，可以依序準備：聯絡 1966 申請長照評估、預約醫療評估取得診斷、再由個管師協助安排日照或居家服務。專業團隊會一路支持您。",
	},
}
