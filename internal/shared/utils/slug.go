package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugHyphens      = regexp.MustCompile(`-+`)
)

// GenerateSlug tạo slug cho group từ title (chỉ gồm a-z, 0-9, _ và -)
func GenerateSlug(input string) string {
	// Step 1: Convert Vietnamese characters to ASCII
	// "Nguyễn Nhật Ánh" → "Nguyen Nhat Anh"
	ascii := RemoveDiacritics(input)

	// Step 2: Lowercase
	// "Nguyen Nhat Anh" → "nguyen nhat anh"
	lower := strings.ToLower(ascii)

	// Step 3: Replace spaces with hyphens
	// "nguyen nhat anh" → "nguyen-nhat-anh"
	hyphenated := strings.ReplaceAll(lower, " ", "-")

	// Step 4: Remove special characters
	// Keep only: a-z, 0-9, underscores, hyphens
	cleaned := slugInvalidChars.ReplaceAllString(hyphenated, "")

	// Step 5: Remove multiple consecutive hyphens
	// "nguyen--nhat---anh" → "nguyen-nhat-anh"
	normalized := slugHyphens.ReplaceAllString(cleaned, "-")

	// Step 6: Trim leading/trailing hyphens
	trimmed := strings.Trim(normalized, "-")

	return trimmed
}

// diacriticGroups: mỗi base character -> các biến thể có dấu (lowercase)
var diacriticGroups = map[rune]string{
	'a': "áàảãạăắằẳẵặâấầẩẫậ",
	'e': "éèẻẽẹêếềểễệ",
	'i': "íìỉĩị",
	'o': "óòỏõọôốồổỗộơớờởỡợ",
	'u': "úùủũụưứừửữự",
	'y': "ýỳỷỹỵ",
	'd': "đ",
}

var diacritics = buildDiacriticTable()

func buildDiacriticTable() map[rune]rune {
	table := make(map[rune]rune)
	for base, variants := range diacriticGroups {
		upperBase := unicode.ToUpper(base)
		for _, v := range variants {
			table[v] = base
			table[unicode.ToUpper(v)] = upperBase
		}
	}
	return table
}

// RemoveDiacritics bỏ dấu tiếng Việt (tất cả các tone của "a" => "a")
func RemoveDiacritics(input string) string {
	return strings.Map(func(r rune) rune {
		if replacement, ok := diacritics[r]; ok {
			return replacement
		}
		return r
	}, input)
}
