// Package prompt turns a user's transactions into the system prompt sent to
// the chat model. It is shared by the proxy and the relay client.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"khata-advisor/internal/domain"
)

// BuildSystemPrompt renders the advisor instructions with the user's
// financial summary embedded. It never fails; an empty list yields zero
// totals and empty breakdown sections.
func BuildSystemPrompt(transactions []domain.Transaction) string {
	s := Summarize(transactions)
	return strings.Join([]string{
		"You are a professional financial advisor AI assistant for a personal finance app called Khata.",
		"",
		"USER'S FINANCIAL DATA:",
		"- Total Income: " + rupees(s.TotalIncome),
		"- Total Expenses: " + rupees(s.TotalExpenses),
		"- Net Balance: " + rupees(s.Net()),
		"- Total Transactions: " + strconv.Itoa(s.Count),
		"",
		"EXPENSE BREAKDOWN BY CATEGORY:",
		categoryLines(s.Categories),
		"",
		"RECENT TRANSACTIONS: " + recentLine(s.Recent),
		"",
		"INSTRUCTIONS:",
		instructions(),
		"",
		"Always base your advice on their real financial data shown above.",
	}, "\n")
}

// Messages assembles the outbound conversation: system prompt, the recent
// history window, then the new user message.
func Messages(transactions []domain.Transaction, history []domain.ChatMessage, userMessage string) []domain.ChatMessage {
	recent := domain.RecentWindow(history)
	out := make([]domain.ChatMessage, 0, len(recent)+2)
	out = append(out, domain.ChatMessage{Role: domain.RoleSystem, Content: BuildSystemPrompt(transactions)})
	out = append(out, recent...)
	out = append(out, domain.ChatMessage{Role: domain.RoleUser, Content: userMessage})
	return out
}

func categoryLines(categories []CategoryTotal) string {
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Category, rupees(c.Amount)))
	}
	return strings.Join(lines, "\n")
}

func recentLine(recent []domain.Transaction) string {
	parts := make([]string, 0, len(recent))
	for _, t := range recent {
		parts = append(parts, fmt.Sprintf("%s%s on %s - %s", rupee, t.Amount.String(), t.Category, t.Description))
	}
	return strings.Join(parts, ", ")
}

func instructions() string {
	return strings.Join([]string{
		"1. Provide personalized financial advice based on the user's actual transaction data",
		"2. Use Indian Rupee (₹) for all currency references",
		"3. Be specific and reference their actual spending patterns",
		"4. Offer actionable insights and recommendations",
		"5. Keep responses conversational but professional",
		"6. Focus on practical financial guidance",
		"7. If asked about specific transactions or categories, refer to their actual data",
		"8. Help with budgeting, saving, expense optimization, and financial planning",
	}, "\n")
}
