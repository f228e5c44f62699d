// internal/core/wizard/queries.go
package wizard

import (
	"context"
	"fmt"
	"strings"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/pkg/logger"
)

// showLast отвечает локальной историей: последний отправленный трейд
func (e *Engine) showLast(s *sessions.Session) Prompt {
	if len(s.History) == 0 {
		return menuPrompt(textNoTrades)
	}
	return menuPrompt(journal.FormatRecord(s.History[0]))
}

// showRecent читает свежую выборку из Notion, а не локальную историю:
// база могла пополниться из другого клиента
func (e *Engine) showRecent(ctx context.Context, s *sessions.Session, n int) Prompt {
	if n <= 0 {
		n = e.opts.HistoryLimit
	}
	records, err := e.ledger.ListRecent(ctx, s.NotionToken, s.DatabaseID, n)
	if err != nil {
		logger.Warn("ListRecent для %s: %v", s.Identity, err)
		return menuPrompt(textListFail)
	}
	if len(records) == 0 {
		return menuPrompt(textNoTrades)
	}

	var b strings.Builder
	b.WriteString("Останні трейди:\n")
	for _, r := range records {
		fmt.Fprintf(&b, "#%d %s", r.Seq, r.Pair)
		if r.RR != "" {
			fmt.Fprintf(&b, " RR=%s", r.RR)
		}
		if r.Score != nil {
			fmt.Fprintf(&b, " Score=%.1f", *r.Score)
		}
		b.WriteString("\n")
	}
	return menuPrompt(strings.TrimRight(b.String(), "\n"))
}
