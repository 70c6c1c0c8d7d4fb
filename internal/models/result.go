package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RecognitionResult is the cleaned text of one page. PageIndex is zero-based.
type RecognitionResult struct {
	PageIndex int
	Text      string
}

// AggregateOutput is the ordered set of page results for one request.
type AggregateOutput struct {
	Pages []RecognitionResult
	// Paginated is set for PDF input with more than one page.
	Paginated bool
}

// Text renders the output. Paginated output prefixes every page with a
// "--- Page N ---" marker; otherwise the page texts are returned bare.
func (o AggregateOutput) Text() string {
	if !o.Paginated {
		parts := make([]string, len(o.Pages))
		for i, p := range o.Pages {
			parts[i] = p.Text
		}
		return strings.Join(parts, "\n")
	}
	var b strings.Builder
	for i, p := range o.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n", p.PageIndex+1, p.Text)
	}
	return b.String()
}

// DeliveryDecision says how recognized text reaches the user.
type DeliveryDecision int

const (
	DeliveryInline DeliveryDecision = iota
	DeliveryAttachment
)

func (d DeliveryDecision) String() string {
	if d == DeliveryAttachment {
		return "attachment"
	}
	return "inline"
}

// DecideDelivery returns Attachment when text is longer than limit characters.
func DecideDelivery(text string, limit int) DeliveryDecision {
	if utf8.RuneCountInString(text) > limit {
		return DeliveryAttachment
	}
	return DeliveryInline
}
