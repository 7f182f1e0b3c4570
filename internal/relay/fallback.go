package relay

import "strings"

type fallbackRule struct {
	keywords []string
	reply    string
}

// fallbackRules is checked in order; the first rule with a matching keyword wins.
var fallbackRules = []fallbackRule{
	{
		keywords: []string{"budget", "spending"},
		reply: "I can help you create a budget! The 50/30/20 rule is a great starting point: " +
			"50% for needs, 30% for wants, and 20% for savings. Would you like me to analyze " +
			"your current spending patterns once the AI service is configured?",
	},
	{
		keywords: []string{"save", "saving"},
		reply: "Here are some saving tips: 1) Set up automatic transfers to savings, " +
			"2) Review recurring subscriptions, 3) Track your expenses regularly. " +
			"For personalized advice based on your transactions, please configure the AI service.",
	},
	{
		keywords: []string{"expense", "transaction"},
		reply: "I can see you want to discuss your expenses. Once the AI service is configured " +
			"with your Groq API key, I'll be able to provide detailed analysis of your actual " +
			"transaction data and personalized recommendations.",
	},
}

const defaultFallback = "I'm here to help with your finances! To provide personalized advice based on " +
	"your actual transaction data, please configure the Groq API key on the server. " +
	"Until then, I can offer general financial guidance."

// Fallback returns static guidance for userMessage when the AI service is
// unavailable. Matching is case-insensitive substring search.
func Fallback(userMessage string) string {
	lower := strings.ToLower(userMessage)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply
			}
		}
	}
	return defaultFallback
}
