package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/pkg/utils"

	"github.com/shopspring/decimal"
)

// summaryListLimit caps how many debtors a summary names.
const summaryListLimit = 10

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// RenderOverdue builds the reminder for a debt past its due date.
func RenderOverdue(debtorName string, due time.Time, daysOverdue int, remaining decimal.Decimal, tag string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s,\n\n", debtorName)
	fmt.Fprintf(&b, "Este é um lembrete sobre sua dívida que venceu em %s.\n\n", utils.FormatLongDate(due))
	fmt.Fprintf(&b, "⚠️ Dívida em atraso há %d %s\n", daysOverdue, plural(daysOverdue, "dia", "dias"))
	fmt.Fprintf(&b, "💰 Valor pendente: %s\n\n", utils.FormatMoney(remaining))
	b.WriteString("Por favor, entre em contato para regularizar sua situação.\n\n")
	b.WriteString("Obrigado!\n\n")
	b.WriteString(tag)
	return b.String()
}

// RenderUpcoming builds the reminder for a debt that is not yet due.
func RenderUpcoming(debtorName string, due time.Time, daysLeft int, remaining decimal.Decimal, tag string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s,\n\n", debtorName)
	b.WriteString("Este é um lembrete sobre sua dívida que vence em breve.\n\n")
	fmt.Fprintf(&b, "📅 Data de vencimento: %s\n", utils.FormatLongDate(due))
	fmt.Fprintf(&b, "⏰ Faltam %d %s\n", daysLeft, plural(daysLeft, "dia", "dias"))
	fmt.Fprintf(&b, "💰 Valor a pagar: %s\n\n", utils.FormatMoney(remaining))
	b.WriteString("Por favor, providencie o pagamento até a data de vencimento para evitar juros adicionais.\n\n")
	b.WriteString("Obrigado!\n\n")
	b.WriteString(tag)
	return b.String()
}

// RenderManual trims a user-written message and appends the closing tag when missing.
func RenderManual(custom, tag string) string {
	message := strings.TrimSpace(custom)
	if !strings.Contains(message, tag) {
		message += "\n\n" + tag
	}
	return message
}

// Render picks the template matching status. Overdue debts count at least one
// day late; upcoming debts never show a negative countdown.
func Render(debtorName string, due, now time.Time, remaining decimal.Decimal, status domain.DebtStatus, tag string) string {
	if status == domain.DebtStatusOverdue {
		days := utils.DaysBetweenCeil(due, now)
		if days < 1 {
			days = 1
		}
		return RenderOverdue(debtorName, due, days, remaining, tag)
	}
	return RenderUpcoming(debtorName, due, utils.DaysBetweenCeil(now, due), remaining, tag)
}

// RenderSummary builds the end-of-cycle report sent to a debt owner.
func RenderSummary(ownerName string, at time.Time, summary *OwnerSummary, tag string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá Boss %s! 👋\n\n", ownerName)
	fmt.Fprintf(&b, "📊 *Resumo de Notificações - %s*\n\n", at.Format("15:04"))

	if sent := len(summary.Sent); sent > 0 {
		fmt.Fprintf(&b, "✅ *%d* %s com sucesso:\n\n", sent, plural(sent, "devedor notificado", "devedores notificados"))
		for i, item := range summary.Sent {
			if i == summaryListLimit {
				break
			}
			fmt.Fprintf(&b, "• %s - %s\n", item.DebtorName, utils.FormatMoney(item.Remaining))
		}
		if sent > summaryListLimit {
			fmt.Fprintf(&b, "... e mais %d\n", sent-summaryListLimit)
		}
	}

	if summary.Failed > 0 {
		fmt.Fprintf(&b, "\n❌ *%d* %s ao enviar\n", summary.Failed, plural(summary.Failed, "falha", "falhas"))
	}

	b.WriteString("\n💼 Continue acompanhando suas cobranças pelo sistema!\n\n")
	b.WriteString(tag)
	return b.String()
}
