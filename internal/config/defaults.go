package config

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Addr:     ":8080",
		LogLevel: "info",
		Line: LineConfig{
			ValidateSignature: true,
			APIBase:           "https://api.line.me",
		},
		Completion: CompletionConfig{
			OpenRouterModel:   "openai/gpt-3.5-turbo",
			OpenRouterAPIBase: "https://openrouter.ai/api/v1",
			AnthropicModel:    "claude-3-5-haiku-20241022",
			TimeoutSeconds:    15,
		},
		Search: SearchConfig{
			Enabled:       true,
			MaxResults:    3,
			SummaryLength: 200,
		},
		Rules: RulesConfig{
			DefaultReply: "I received your message: {{message}}\nI'm experiencing some technical issues. Please try again later.",
			Rules:        DefaultRules(),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultRules is the built-in keyword table. Order matters: the first rule
// with a trigger found in the message wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Triggers: []string{"hello", "hi"},
			Reply:    "Hello! How can I help you today? I can search the web for current information or answer general questions!",
		},
		{
			Triggers: []string{"help"},
			Reply: "I'm a bot with AI and web search capabilities!\n\n" +
				"• Ask me anything and I'll decide if I need to search for current information\n" +
				"• Say 'search [query]' for direct web search\n" +
				"• I can help with current events, weather, news, tech updates, and more!",
		},
		{
			Triggers: []string{"time"},
			Reply:    "Current time: {{time}}",
		},
	}
}
