package faqcache

import (
	"context"
	"time"

	"github.com/ternarybob/consilium/internal/models"
)

// defaultTTLDays for the curated entries, longer than ad-hoc cached answers
const seededTTLDays = 90

type seedEntry struct {
	question string
	answer   string
}

var defaultEntries = []seedEntry{
	{
		question: "운동은 얼마나 해야 하나요?",
		answer: "대한비만학회 가이드라인에 따르면, 주 150분 이상의 중강도 유산소 운동을 권장합니다. " +
			"이를 주 5일로 나누면 하루 30분씩 걷기나 자전거 타기를 하시면 좋습니다. " +
			"근력운동은 주 2-3회 추가하시면 더욱 효과적입니다.",
	},
	{
		question: "혈당 목표치는 얼마인가요?",
		answer: "공복혈당은 100mg/dL 미만이 정상입니다. 100-125mg/dL은 당뇨병 전단계, " +
			"126mg/dL 이상이면 당뇨병으로 진단됩니다. 개인별 목표는 담당 의사와 상담하세요.",
	},
	{
		question: "어떤 식단이 좋나요?",
		answer: "채소, 통곡물, 저지방 단백질을 중심으로 한 균형 잡힌 식단을 권장합니다. " +
			"하루 3끼 규칙적으로 드시고, 가공식품과 고염분 식품은 피하세요. " +
			"야채는 매끼 2접시 이상, 과일은 하루 1-2회 적당량 섭취하시면 좋습니다.",
	},
	{
		question: "허리둘레가 왜 중요한가요?",
		answer: "허리둘레는 복부비만을 나타내는 중요한 지표입니다. " +
			"남성은 90cm, 여성은 85cm 이상일 때 대사증후군 위험이 높아집니다. " +
			"복부지방은 인슐린 저항성과 심혈관 질환 위험을 증가시킵니다.",
	},
	{
		question: "대사증후군이란 무엇인가요?",
		answer: "대사증후군은 복부비만, 고혈압, 고혈당, 고중성지방, 저HDL 콜레스테롤 중 " +
			"3가지 이상을 동시에 가진 상태를 말합니다. 당뇨병과 심혈관 질환의 위험이 높아집니다. " +
			"생활습관 개선으로 관리할 수 있습니다.",
	},
}

// SeedDefaults inserts the curated FAQ entries that are not already
// present, then rebuilds the index once.
func (c *Cache) SeedDefaults(ctx context.Context) error {
	existing := make(map[string]bool)
	stored, err := c.storage.List(ctx)
	if err != nil {
		return err
	}
	for _, entry := range stored {
		existing[entry.Question] = true
	}

	added := 0
	for _, seed := range defaultEntries {
		if existing[seed.question] {
			continue
		}
		entry := &models.FAQEntry{
			Question: seed.question,
			Answer:   seed.answer,
			CachedAt: time.Now(),
			TTLDays:  seededTTLDays,
		}
		if err := c.storage.Put(ctx, entry); err != nil {
			return err
		}
		added++
	}

	if added > 0 {
		if err := c.rebuild(ctx); err != nil {
			return err
		}
		c.logger.Info().Int("added", added).Msg("Seeded default FAQ entries")
	}
	return nil
}
