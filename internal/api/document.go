package api

import (
	"github.com/deusflow/newspulse/internal/news"
	"github.com/deusflow/newspulse/internal/report"
)

// Document is the JSON body returned for a successful analysis.
type Document struct {
	Company                   string             `json:"company"`
	Articles                  []news.Article     `json:"articles"`
	ComparativeSentimentScore ComparativeSummary `json:"comparative_sentiment_score"`
	FinalSentimentAnalysis    string             `json:"final_sentiment_analysis"`
}

type ComparativeSummary struct {
	SentimentDistribution report.Distribution `json:"sentiment_distribution"`
	CoverageDifferences   []report.Difference `json:"coverage_differences"`
	TopicOverlap          report.TopicOverlap `json:"topic_overlap"`
}

func NewDocument(a *news.Analysis) Document {
	return Document{
		Company:  a.Company,
		Articles: a.Articles,
		ComparativeSentimentScore: ComparativeSummary{
			SentimentDistribution: a.Report.SentimentDistribution,
			CoverageDifferences:   a.Report.CoverageDifferences,
			TopicOverlap:          a.Report.TopicOverlap,
		},
		FinalSentimentAnalysis: a.Report.Verdict,
	}
}
