package util

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// Pads the message with zero-width characters so KakaoTalk collapses it behind "see more".
func ApplyKakaoSeeMorePadding(text, instruction string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	message := strings.TrimSpace(instruction)

	var builder strings.Builder
	builder.Grow(len(text) + KakaoSeeMorePadding + len(message) + 2)

	if message != "" {
		builder.WriteString(message)
	}
	builder.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(text, "\n") {
		builder.WriteByte('\n')
	}
	builder.WriteString(text)

	return builder.String()
}

// Removes a duplicated header from the first line if present.
func StripLeadingHeader(text, header string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(header) == "" {
		return text
	}

	candidates := []string{
		header + "\r\n\r\n",
		header + "\n\n",
		header + "\r\n",
		header + "\n",
		header,
	}

	for _, candidate := range candidates {
		if strings.HasPrefix(text, candidate) {
			return strings.TrimPrefix(text, candidate)
		}
	}
	return text
}

// Strips the header from the body, then applies "see more" padding with the header as instruction.
func ApplySeeMoreWithHeader(text, header, fallback, suffix string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	body := StripLeadingHeader(text, header)
	instruction := strings.TrimSpace(header)
	if instruction == "" {
		instruction = strings.TrimSpace(fallback)
	} else if suffix != "" {
		instruction += suffix
	}

	if instruction == "" {
		instruction = strings.TrimSpace(fallback)
	}

	return ApplyKakaoSeeMorePadding(body, instruction)
}
