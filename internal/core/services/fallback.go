package services

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// ImageTextMarker prefixes text transcribed from an image.
const ImageTextMarker = "Extracted text from image:"

// Fallback answer limits.
const (
	fallbackMaxLines     = 3
	fallbackMaxChars     = 800
	fallbackMinLineChars = 20
	fallbackMinWordChars = 3
)

// Canned answers used when the model is not consulted.
const (
	answerNoInformation = "I don't have enough information in the uploaded documents to answer this question. " +
		"Please upload relevant documents or ask about the content that has been uploaded."
	answerNothingSpecific = "I found documents, but they don't contain specific information about your question. " +
		"The documents might cover different topics."
	answerRelevantPrefix = "Based on the available documents, here's relevant information:\n"
	answerImagePrefix    = "The image contains the following text:\n\n"
)

// imageQuestionPhrases extend the retrieval image keywords for answering.
var imageQuestionPhrases = []string{
	"what is this", "what does this show", "describe this", "what text", "what written",
}

// isImageQuestion reports whether the question asks about an image.
func isImageQuestion(question string) bool {
	if domain.IsImageQuery(question) {
		return true
	}
	q := strings.ToLower(question)
	for _, p := range imageQuestionPhrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// extractiveAnswer builds an answer from context lines that share a
// significant word with the question.
func extractiveAnswer(question, context string) string {
	if context == "" || context == domain.NoContextSentinel {
		return answerNoInformation
	}

	var words []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if utf8.RuneCountInString(w) > fallbackMinWordChars {
			words = append(words, w)
		}
	}

	var lines []string
	for _, line := range strings.Split(context, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= fallbackMinLineChars {
			continue
		}
		lower := strings.ToLower(line)
		for _, w := range words {
			if strings.Contains(lower, w) {
				lines = append(lines, line)
				break
			}
		}
		if len(lines) == fallbackMaxLines {
			break
		}
	}

	if len(lines) == 0 {
		return answerNothingSpecific
	}
	return truncateRunes(answerRelevantPrefix+strings.Join(lines, "\n"), fallbackMaxChars)
}

// imageAnswer returns the transcribed image text found in context, if any.
func imageAnswer(context string) (string, bool) {
	_, after, found := strings.Cut(context, ImageTextMarker)
	if !found {
		return "", false
	}
	text, _, _ := strings.Cut(after, "---")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return answerImagePrefix + text, true
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
