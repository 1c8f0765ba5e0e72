// Package lang detects the language of user text for the two locales the
// product serves, English and Arabic.
package lang

import "unicode"

// Detect returns "ar" when the text contains Arabic script and "en"
// otherwise. Empty or script-free text counts as English.
func Detect(text string) string {
	if ContainsArabic(text) {
		return "ar"
	}
	return "en"
}

// ContainsArabic reports whether any rune falls in the Arabic blocks,
// including the presentation forms used by shaped text.
func ContainsArabic(text string) bool {
	for _, r := range text {
		if isArabic(r) {
			return true
		}
	}
	return false
}

// IsRTL reports whether text should render right-to-left.
func IsRTL(text string) bool {
	return ContainsArabic(text)
}

func isArabic(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF: // Arabic
		return true
	case r >= 0x0750 && r <= 0x077F: // Arabic Supplement
		return true
	case r >= 0x08A0 && r <= 0x08FF: // Arabic Extended-A
		return true
	case r >= 0xFB50 && r <= 0xFDFF: // Presentation Forms-A
		return true
	case r >= 0xFE70 && r <= 0xFEFF: // Presentation Forms-B
		return true
	}
	return unicode.Is(unicode.Arabic, r)
}
