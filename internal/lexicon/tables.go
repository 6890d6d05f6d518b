package lexicon

// defaultTables returns the embedded clinical tables. Each call returns a
// fresh copy so LoadFile can overlay a config file without touching the
// registry built from the defaults.
//
// Narrative templates for the single/pair/many buckets contain one %s verb
// that the analyzer fills with the matched topical phrases.
func defaultTables() map[Module]moduleTable {
	return map[Module]moduleTable{
		ModuleWarningSigns: {
			Name:       "十大警訊分析",
			ShortLabel: "🚨 警訊分析",
			Icon:       "⚠️",
			Color:      "#FF6B6B",
			Normalizer: 4,
			Signals: map[string][]string{
				"memory_loss":      {"忘記", "記憶", "記不住", "想不起"},
				"repetition":       {"重複", "重複問", "問同樣", "一直問"},
				"task_difficulty":  {"不會用", "不會操作", "搞不清楚步驟", "不太會使用"},
				"disorientation":   {"迷路", "找不到路", "不知道在哪", "搞不清楚時間", "弄錯日期"},
				"misplacing":       {"亂放", "放錯地方", "找不到東西", "東西不見"},
				"poor_judgment":    {"判斷力", "受騙", "上當", "亂買", "亂花錢"},
				"language_problem": {"說不出", "詞不達意", "講不清楚", "叫不出名字"},
				"withdrawal":       {"退縮", "不想出門", "不參加", "提不起勁"},
				"safety_lapse":     {"忘記關", "瓦斯", "爐火", "門沒鎖", "水龍頭沒關"},
			},
			Templates: map[Bucket]string{
				BucketNone:   "目前的描述中沒有明顯的警訊跡象，建議持續觀察日常生活的變化，並記錄發生的時間與頻率。",
				BucketSingle: "您提到的「%s」可能與失智症十大警訊之一有關。偶爾發生屬於正常老化範圍，若頻率增加或影響日常生活，建議安排進一步評估。",
				BucketPair:   "您描述的「%s」同時涉及兩項警訊指標。建議開始記錄這些狀況發生的情境與頻率，並考慮預約記憶門診進行專業評估。",
				BucketMany:   "您描述的「%s」涉及多項警訊指標，建議盡快安排神經科或記憶門診的專業評估。及早了解狀況，對後續照護安排會很有幫助。",
			},
		},
		ModuleStage: {
			Name:       "病程階段分析",
			ShortLabel: "📊 病程分析",
			Icon:       "📈",
			Color:      "#4ECDC4",
			Normalizer: 3,
			Signals: map[string][]string{
				"mild_stage":     {"輕度", "初期", "剛開始", "偶爾發生", "還算可以"},
				"moderate_stage": {"中度", "明顯退步", "常常需要", "需要提醒", "需要協助"},
				"severe_stage":   {"重度", "臥床", "完全依賴", "無法自理", "不認得家人"},
				"daily_function": {"穿衣", "洗澡", "吃飯", "如廁", "日常生活"},
				"progression":    {"惡化", "退化", "越來越", "變得更"},
			},
			Templates: map[Bucket]string{
				BucketNone:   "目前的描述還不足以判斷病程階段，建議記錄日常功能的變化，例如穿衣、洗澡、吃飯是否需要協助。",
				BucketSingle: "您提到的「%s」提供了病程的初步線索。每位長輩的進展速度不同，建議與醫療團隊討論目前的功能狀態。",
				BucketPair:   "從「%s」來看，可以初步對照病程階段的特徵。建議整理這些觀察，在回診時與醫師討論照護計畫的調整。",
				BucketMany:   "您描述的「%s」涵蓋多項病程指標。建議與醫療團隊完整討論目前的功能狀態，一起規劃接下來的照護安排。",
			},
		},
		ModuleBPSD: {
			Name:       "行為心理症狀分析",
			ShortLabel: "🧠 行為症狀分析",
			Icon:       "💭",
			Color:      "#45B7D1",
			Normalizer: 3,
			Signals: map[string][]string{
				"aggression":   {"攻擊", "動手", "打人", "激動"},
				"irritability": {"暴躁", "易怒", "生氣", "發脾氣", "大吼大叫"},
				"mood_change":  {"情緒", "心情起伏", "喜怒無常"},
				"depression":   {"憂鬱", "低落", "一直哭", "悲觀", "不想活"},
				"psychosis":    {"妄想", "幻覺", "懷疑", "被害", "有人要害", "東西被偷", "看到不存在"},
				"apathy":       {"冷漠", "沒興趣", "不理人", "發呆", "整天坐著"},
				"sleep":        {"睡眠", "失眠", "日夜顛倒", "晚上不睡", "半夜起來", "白天一直睡"},
			},
			Templates: map[Bucket]string{
				BucketNone:   "目前的描述中沒有明顯的行為心理症狀，若日後出現情緒或行為的改變，可以再與我分享。",
				BucketSingle: "您提到的「%s」是失智症常見的行為心理症狀之一。這些行為不是故意的，背後通常有原因，保持冷靜回應會比糾正更有效。",
				BucketPair:   "您描述的「%s」涉及兩類行為心理症狀。建議記錄發生的時間與誘因，並在回診時告訴醫師，必要時可以調整照護方式或治療。",
				BucketMany:   "您描述的「%s」涉及多類行為心理症狀，照顧上辛苦了。建議儘早與醫療團隊討論，同時也別忘了照顧自己的身心狀態。",
			},
		},
		ModuleCareResources: {
			Name:       "照護資源導航",
			ShortLabel: "🤝 資源導航",
			Icon:       "🗺️",
			Color:      "#96CEB4",
			Normalizer: 3,
			Signals: map[string][]string{
				"medical_resource": {"醫療", "醫生", "醫院", "治療", "門診", "神經科", "記憶門診"},
				"social_resource":  {"資源", "服務", "補助", "申請", "長照", "日照中心", "喘息服務"},
				"care_skills":      {"照護技巧", "怎麼照顧", "如何照顧", "怎麼溝通", "如何應對"},
				"emergency_help":   {"緊急", "救命", "求助", "支援", "昏倒", "跌倒"},
				"legal_planning":   {"法律", "監護", "財產", "委任", "意定監護"},
			},
			Templates: map[Bucket]string{
				BucketNone:   "如果您想了解醫療、長照或社會資源，可以告訴我目前遇到的困難，我會協助您找到合適的窗口。",
				BucketSingle: "關於您提到的「%s」，可以從長照專線 1966 開始詢問，或聯絡各縣市的失智共同照護中心，他們能協助評估與轉介。",
				BucketPair:   "您詢問的「%s」涉及多項資源。建議先撥打長照專線 1966 申請評估，並準備好就醫紀錄，後續即可銜接居家服務或日照中心等資源。",
				BucketMany:   "您詢問的「%s」涵蓋多個資源面向。建議依序處理：先完成醫療評估與診斷，再撥打 1966 申請長照資源，法律與財務規劃可洽各地法律扶助基金會。",
			},
		},
	}
}
