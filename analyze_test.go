package rfprag_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

func TestAnalyzeDocument(t *testing.T) {
	doc := rfprag.Document{
		Name:       "rfp.docx",
		Paragraphs: []string{strings.Repeat("가", 3000), strings.Repeat("나", 3000)},
	}

	analyzer := &MockAnalyzer{
		phraseResults:  []rfprag.PhraseResult{{Phrases: []string{"금융권 시스템", "데이터 플랫폼"}}},
		summaryResults: []rfprag.SummaryResult{{Sentences: []string{"first sentence", "second sentence"}}},
	}

	results := rfprag.AnalyzeDocument(doc, analyzer, rfprag.AnalyzeOptions{}, testLogger(t))

	if len(results) != 2 {
		t.Fatalf("expected 2 chunk results, got %d", len(results))
	}
	for i, result := range results {
		if result.Err != nil {
			t.Fatalf("chunk %d unexpectedly failed: %v", i, result.Err)
		}
		if !reflect.DeepEqual(result.KeyPhrases, []string{"금융권 시스템", "데이터 플랫폼"}) {
			t.Errorf("chunk %d got unexpected key phrases %v", i, result.KeyPhrases)
		}
		if len(result.Summary) != 2 {
			t.Errorf("chunk %d expected 2 summary sentences, got %d", i, len(result.Summary))
		}
	}
	if len(analyzer.keyPhrasesCalls) != 2 || len(analyzer.summarizeCalls) != 2 {
		t.Errorf("expected one analytics call pair per chunk, got %d/%d",
			len(analyzer.keyPhrasesCalls), len(analyzer.summarizeCalls))
	}
}

func TestAnalyzeDocumentChunkFailureIsIsolated(t *testing.T) {
	doc := rfprag.Document{
		Name:       "rfp.docx",
		Paragraphs: []string{"단일 문단 문서"},
	}

	tests := []struct {
		name     string
		analyzer *MockAnalyzer
	}{
		{
			name:     "key phrase call fails",
			analyzer: &MockAnalyzer{keyPhrasesErr: errors.New("service unavailable")},
		},
		{
			name: "key phrase result carries error",
			analyzer: &MockAnalyzer{
				phraseResults: []rfprag.PhraseResult{{IsError: true, ErrMessage: "InvalidDocument"}},
			},
		},
		{
			name: "summarize call fails",
			analyzer: &MockAnalyzer{
				phraseResults: []rfprag.PhraseResult{{Phrases: []string{"문단 문서"}}},
				summarizeErr:  errors.New("service unavailable"),
			},
		},
		{
			name: "summary result carries error",
			analyzer: &MockAnalyzer{
				phraseResults:  []rfprag.PhraseResult{{Phrases: []string{"문단 문서"}}},
				summaryResults: []rfprag.SummaryResult{{IsError: true, ErrMessage: "InvalidDocument"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := rfprag.AnalyzeDocument(doc, tt.analyzer, rfprag.AnalyzeOptions{}, testLogger(t))

			if len(results) != 1 {
				t.Fatalf("expected 1 chunk result, got %d", len(results))
			}
			if results[0].Err == nil {
				t.Fatal("expected chunk analysis to report an error")
			}
			if len(results[0].KeyPhrases) != 0 || len(results[0].Summary) != 0 {
				t.Error("failed chunk must carry no phrases or summary")
			}
		})
	}
}

func TestAnalyzeDocumentCapsSummarySentences(t *testing.T) {
	sentences := make([]string, 12)
	for i := range sentences {
		sentences[i] = "sentence"
	}

	analyzer := &MockAnalyzer{
		phraseResults:  []rfprag.PhraseResult{{Phrases: []string{"문단 문서"}}},
		summaryResults: []rfprag.SummaryResult{{Sentences: sentences}},
	}

	doc := rfprag.Document{Name: "rfp.docx", Paragraphs: []string{"본문"}}
	results := rfprag.AnalyzeDocument(doc, analyzer, rfprag.AnalyzeOptions{}, testLogger(t))

	if len(results) != 1 {
		t.Fatalf("expected 1 chunk result, got %d", len(results))
	}
	if len(results[0].Summary) != rfprag.DefaultMaxSummarySentences {
		t.Errorf("expected summary capped at %d sentences, got %d",
			rfprag.DefaultMaxSummarySentences, len(results[0].Summary))
	}
}

func TestFilterKeyPhrases(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
		want    []string
	}{
		{
			name:    "short phrases are dropped",
			phrases: []string{"IT", "시스템 구축", "의", "IT 인프라"},
			want:    []string{"시스템 구축", "IT 인프라"},
		},
		{
			name:    "trimming happens before the length check",
			phrases: []string{"  년  ", "  사업 범위  "},
			want:    []string{"사업 범위"},
		},
		{
			name:    "excluded stopwords are dropped",
			phrases: []string{"SPI의 역할", "데이터 관리"},
			want:    []string{"데이터 관리"},
		},
		{
			name:    "duplicates keep first occurrence",
			phrases: []string{"클라우드", "보안 체계", "클라우드"},
			want:    []string{"클라우드", "보안 체계"},
		},
		{
			name:    "everything filtered",
			phrases: []string{"의", "년", " "},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rfprag.FilterKeyPhrases(tt.phrases, rfprag.DefaultPhraseExclusions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
