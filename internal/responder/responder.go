// Package responder is the deterministic, offline answer source used when no
// external provider produces a reply.
package responder

import "strings"

const (
	GreetingReply = "Hello! I'm your AI assistant. How can I help you today?"

	ProgrammingReply = "I'd be happy to help with Python programming! What specific topic would you like to discuss? " +
		"I can help with data science, web development, AI/ML, or general programming concepts."

	MachineLearningReply = "Machine Learning is fascinating! I can discuss topics like supervised learning, neural networks, " +
		"deep learning frameworks like TensorFlow and PyTorch, or help you understand ML concepts."

	DataScienceReply = "Data Science is a powerful field! I can help with pandas for data manipulation, numpy for numerical computing, " +
		"matplotlib/seaborn for visualization, or statistical analysis techniques."

	WebDevelopmentReply = "Web development with Python is great! I can discuss FastAPI for modern APIs, Django for full-stack applications, " +
		"Flask for lightweight projects, or REST API design principles."

	QuestionReply = "That's an interesting question! While I'm running in demo mode with basic responses, " +
		"I'm designed to help with programming, data science, AI/ML, and general technical topics. " +
		"Could you be more specific about what you'd like to know?"

	AcknowledgementReply = "I understand you're interested in discussing this topic. In full mode, I'd provide detailed insights, " +
		"but currently I'm running with basic responses. Feel free to ask about Python, AI, data science, or web development!"
)

type rule struct {
	topic    string
	keywords []string
	reply    string
}

// rules are evaluated in order; the first bucket with a matching keyword wins.
var rules = []rule{
	{topic: "greeting", keywords: []string{"hello", "hi", "hey"}, reply: GreetingReply},
	{topic: "programming", keywords: []string{"python", "programming", "code"}, reply: ProgrammingReply},
	{topic: "machine-learning", keywords: []string{"machine learning", "ml", "ai", "artificial intelligence"}, reply: MachineLearningReply},
	{topic: "data-science", keywords: []string{"data science", "pandas", "numpy"}, reply: DataScienceReply},
	{topic: "web-development", keywords: []string{"web development", "fastapi", "flask", "django"}, reply: WebDevelopmentReply},
}

// Respond returns a canned reply for message. Keywords match as
// case-insensitive substrings, so "hi" also matches inside "this".
func Respond(message string) string {
	reply, _ := Match(message)
	return reply
}

// Match is Respond plus the name of the bucket that produced the reply:
// one of the topic names, "question" or "acknowledgement".
func Match(message string) (reply, topic string) {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply, r.topic
			}
		}
	}
	if strings.Contains(message, "?") {
		return QuestionReply, "question"
	}
	return AcknowledgementReply, "acknowledgement"
}
