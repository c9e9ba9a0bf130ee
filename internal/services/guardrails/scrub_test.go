package guardrails

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/consilium/internal/models"
)

func TestScrubText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "email",
			input: "문의는 patient.kim@example.com 으로 부탁드립니다",
			want:  "문의는 [REDACTED] 으로 부탁드립니다",
		},
		{
			name:  "phone",
			input: "연락처 010-1234-5678 확인",
			want:  "연락처 [REDACTED] 확인",
		},
		{
			name:  "resident registration number",
			input: "주민번호 900101-1234567 기록됨",
			want:  "주민번호 [REDACTED] 기록됨",
		},
		{
			name:  "account number",
			input: "계좌 110-2345-6789",
			want:  "계좌 [REDACTED]",
		},
		{
			name:  "name tag",
			input: "이름: 김철수 님의 상담 기록",
			want:  "[REDACTED] 님의 상담 기록",
		},
		{
			name:  "clean text unchanged",
			input: "운동은 주 3회가 적당합니다",
			want:  "운동은 주 3회가 적당합니다",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrubText(tt.input))
		})
	}
}

func TestScrubObservations(t *testing.T) {
	input := []models.Observation{
		{Role: models.ObservationAction, Title: "연락처 010-9876-5432", Content: "이메일 a@b.co 저장"},
		{Role: models.ObservationObserve, Title: "분석 완료", Content: "식단 평가 결과"},
	}

	scrubbed := ScrubObservations(input)

	assert.Len(t, scrubbed, 2)
	assert.Equal(t, "연락처 [REDACTED]", scrubbed[0].Title)
	assert.Equal(t, "이메일 [REDACTED] 저장", scrubbed[0].Content)
	assert.Equal(t, "분석 완료", scrubbed[1].Title)

	// original slice untouched
	assert.Contains(t, input[0].Title, "010-9876-5432")
}
