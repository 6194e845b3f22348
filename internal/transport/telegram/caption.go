package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
)

// MaxCaptionLength is the Bot API limit on photo captions.
const MaxCaptionLength = 1024

// CaptionFormatter renders MarkdownV2 captions.
type CaptionFormatter struct{}

// Caption links the post page and, when present, the original source.
func (CaptionFormatter) Caption(p domain.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s](%s)", bot.EscapeMarkdown(fmt.Sprintf("#%d", p.ID())), escapeLinkURL(p.ShowURL()))

	if src := strings.TrimSpace(p.Source()); src != "" {
		b.WriteString("\n")
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			fmt.Fprintf(&b, "[%s](%s)", bot.EscapeMarkdown("Source"), escapeLinkURL(src))
		} else {
			b.WriteString(bot.EscapeMarkdown("Source: " + src))
		}
	}

	if p.Rating() != "" {
		b.WriteString("\n")
		b.WriteString(bot.EscapeMarkdown("Rating: " + p.Rating().String()))
	}

	caption := b.String()
	if len([]rune(caption)) > MaxCaptionLength {
		// The link line always fits; drop the rest rather than cut an entity.
		caption = fmt.Sprintf("[%s](%s)", bot.EscapeMarkdown(fmt.Sprintf("#%d", p.ID())), escapeLinkURL(p.ShowURL()))
	}
	return caption
}

// Inside (...) of a MarkdownV2 link only ')' and '\' must be escaped.
func escapeLinkURL(u string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(u)
}
