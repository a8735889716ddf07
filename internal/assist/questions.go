package assist

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Topic is an interview question category.
type Topic string

const (
	TopicBehavioral  Topic = "Behavioral"
	TopicTechnical   Topic = "Technical"
	TopicSituational Topic = "Situational"
)

// Topics lists the topics in display order.
var Topics = []Topic{TopicBehavioral, TopicTechnical, TopicSituational}

var questionBank = map[Topic][]string{
	TopicBehavioral: {
		"Tell me about a time you failed.",
		"Describe a situation where you had to work with a difficult team member.",
		"Tell me about a time you had to learn something quickly.",
	},
	TopicTechnical: {
		"Explain the concept of prompt engineering.",
		"What are the benefits of using virtual environments in Python?",
		"Describe the difference between generative and discriminative AI models.",
	},
	TopicSituational: {
		"How would you approach a project with a very tight deadline?",
		"Imagine a client is unhappy with the results of your work. How would you handle this?",
		"Describe how you would explain AI to someone with no technical background.",
	},
}

// ParseTopic matches a topic name case-insensitively.
func ParseTopic(s string) (Topic, bool) {
	for _, t := range Topics {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// RandomQuestion picks a question for topic using r, or the global source
// when r is nil.
func RandomQuestion(topic Topic, r *rand.Rand) (string, error) {
	questions, ok := questionBank[topic]
	if !ok {
		return "", fmt.Errorf("unknown interview topic %q", topic)
	}
	if r == nil {
		return questions[rand.IntN(len(questions))], nil
	}
	return questions[r.IntN(len(questions))], nil
}
