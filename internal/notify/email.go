// Package notify delivers best-deal updates after a pipeline run.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

// Config holds SMTP settings. An empty Host disables notifications.
type Config struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// Enabled reports whether the notifier is configured to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

// Notifier sends pipeline results over email.
type Notifier struct {
	cfg  Config
	log  *slog.Logger
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewNotifier creates an email notifier. When the config is incomplete
// the notifier is a no-op.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		cfg: cfg,
		log: slog.Default().With("component", "notify"),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// NotifyResult emails the run result. Delivery failures are logged, not
// returned, so a broken mail server never fails a run.
func (n *Notifier) NotifyResult(result *domain.PipelineResult) {
	if !n.cfg.Enabled() {
		n.log.Debug("notifications disabled, skipping email")
		return
	}

	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = n.cfg.To
	e.Subject = subject(result)
	e.Text = []byte(RenderText(result))
	e.HTML = []byte(RenderHTML(result))

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(e, addr, auth); err != nil {
		n.log.Error("failed to send notification email", "error", err)
		return
	}
	n.log.Info("notification email sent", "recipients", len(n.cfg.To))
}

func subject(result *domain.PipelineResult) string {
	if result.BestDeal == nil {
		return "Price check: no eligible deal found"
	}
	return fmt.Sprintf("Price check: best deal $%.2f/L at %s",
		result.BestDeal.PricePerLitre, result.BestDeal.Store)
}

// RenderText builds the plain-text body for a run result.
func RenderText(result *domain.PipelineResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Price check completed at %s\n\n", result.CompletedAt.Format(time.RFC1123))

	if best := result.BestDeal; best != nil {
		fmt.Fprintf(&b, "Best deal: %s\n", best.Name)
		fmt.Fprintf(&b, "  Store:  %s\n", best.Store)
		fmt.Fprintf(&b, "  Price:  $%.2f ($%.2f/L)\n", best.Price, best.PricePerLitre)
		if best.URL != "" {
			fmt.Fprintf(&b, "  Link:   %s\n", best.URL)
		}
	} else {
		b.WriteString("No eligible deal found in this run.\n")
	}

	if len(result.Ranked) > 0 {
		b.WriteString("\nAll options (cheapest first):\n")
		for i, p := range result.Ranked {
			fmt.Fprintf(&b, "  %d. %s @ %s: $%.2f ($%.2f/L)\n",
				i+1, p.Name, p.Store, p.Price, p.PricePerLitre)
		}
	}

	s := result.Summary
	fmt.Fprintf(&b, "\nSources: %d ok / %d total, %d records, %d dropped\n",
		okSources(result), len(result.Outcomes), s.TotalRecords, s.Dropped)
	return b.String()
}

// RenderHTML builds the HTML body for a run result.
func RenderHTML(result *domain.PipelineResult) string {
	var b strings.Builder
	b.WriteString("<h2>Price check</h2>")
	fmt.Fprintf(&b, "<p>Completed at %s</p>", result.CompletedAt.Format(time.RFC1123))

	if best := result.BestDeal; best != nil {
		fmt.Fprintf(&b, "<p><strong>Best deal:</strong> %s at %s &mdash; $%.2f ($%.2f/L)</p>",
			best.Name, best.Store, best.Price, best.PricePerLitre)
		if best.URL != "" {
			fmt.Fprintf(&b, `<p><a href="%s">View product</a></p>`, best.URL)
		}
	} else {
		b.WriteString("<p>No eligible deal found in this run.</p>")
	}

	if len(result.Ranked) > 0 {
		b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>#</th><th>Product</th><th>Store</th><th>Price</th><th>$/L</th></tr>")
		for i, p := range result.Ranked {
			fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%s</td><td>$%.2f</td><td>$%.2f</td></tr>",
				i+1, p.Name, p.Store, p.Price, p.PricePerLitre)
		}
		b.WriteString("</table>")
	}
	return b.String()
}

func okSources(result *domain.PipelineResult) int {
	n := 0
	for _, o := range result.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}
