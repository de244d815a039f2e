// Package topics содержит подборку тем, которые интерфейс предлагает пользователю.
package topics

import (
	"strings"
	"unicode"
)

// Category представляет категорию тем
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"-"`
	Topics   []string `json:"topics"`
}

// Categories возвращает все категории в порядке показа
func Categories() []Category {
	return []Category{
		{
			Name: "Technology",
			Keywords: []string{
				"ai", "artificial intelligence", "machine learning", "software",
				"programming", "cloud", "security", "robot", "quantum", "blockchain",
			},
			Topics: []string{
				"The Future of AI",
				"Why Every Developer Should Learn Go",
				"Quantum Computing Explained Simply",
				"How Open Source Shapes the Internet",
			},
		},
		{
			Name: "Science",
			Keywords: []string{
				"space", "mars", "physics", "biology", "climate", "ocean",
				"research", "discovery", "telescope", "evolution",
			},
			Topics: []string{
				"Life on Mars: What We Know So Far",
				"The Hidden World of Deep Ocean Creatures",
				"How Telescopes See the Early Universe",
			},
		},
		{
			Name: "Lifestyle",
			Keywords: []string{
				"travel", "food", "cooking", "fitness", "health", "sleep",
				"productivity", "minimalism", "coffee", "garden",
			},
			Topics: []string{
				"The Art of Slow Travel",
				"Building a Morning Routine That Sticks",
				"Urban Gardening for Beginners",
			},
		},
		{
			Name: "Business",
			Keywords: []string{
				"startup", "marketing", "finance", "investing", "remote work",
				"leadership", "career", "economy", "sales", "freelance",
			},
			Topics: []string{
				"Lessons from Failed Startups",
				"Remote Work Five Years Later",
				"Personal Finance Habits That Compound",
			},
		},
	}
}

// Suggestions по одной теме из каждой категории
func Suggestions() []string {
	var result []string
	for _, category := range Categories() {
		if len(category.Topics) > 0 {
			result = append(result, category.Topics[0])
		}
	}
	return result
}

// DetectCategory определяет категорию темы по ключевым словам.
// Ключевые слова сравниваются целыми словами, так что "ai" не находится
// в "said". Возвращает false, если ни одно слово не совпало.
func DetectCategory(topic string) (Category, bool) {
	text := normalize(topic)

	var best Category
	maxMatches := 0
	for _, category := range Categories() {
		matches := 0
		for _, keyword := range category.Keywords {
			if containsPhrase(text, keyword) {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			best = category
		}
	}

	return best, maxMatches > 0
}

// normalize приводит текст к виду " слово слово ": нижний регистр,
// без пунктуации, слова через один пробел
func normalize(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(words, " ") + " "
}

// containsPhrase ищет ключевую фразу целыми словами, допуская
// множественное число на -s
func containsPhrase(text, keyword string) bool {
	phrase := strings.TrimSpace(normalize(keyword))
	return strings.Contains(text, " "+phrase+" ") || strings.Contains(text, " "+phrase+"s ")
}

// Related темы из той же категории, кроме указанной
func Related(topic string) []string {
	category, ok := DetectCategory(topic)
	if !ok {
		return nil
	}

	var related []string
	for _, candidate := range category.Topics {
		if !strings.EqualFold(candidate, strings.TrimSpace(topic)) {
			related = append(related, candidate)
		}
	}
	return related
}
