package steps

// Файлы шагов внутри data_dir.
const (
	FileCandidates = "step1_candidates.json"
	FileFiltered   = "step2_filtered.json"
	FileSentiment  = "step3_sentiment.json"
	FileTopX       = "step6_topx.json"
	FileAI         = "step7_ai.json"
	FileSLTP       = "step8_sltp.json"
	FileNormalized = "step9_normalize.json"
	FileReport     = "ai_report.html"
	FileOpen       = "step15_open.json"
	FileClose      = "step16_close.json"

	FileAnalyze       = "step12_analyze.json"
	FileAnalyzeReport = "analyze_report.html"
)
