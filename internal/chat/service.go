// Package chat generates the canned supportive replies. Keyword rules
// are checked in order; anything unmatched draws from a fallback pool.
package chat

import (
	"math/rand"
	"strings"
)

type rule struct {
	keywords []string
	reply    string
}

var rules = []rule{
	{
		keywords: []string{"sad", "depressed", "unhappy"},
		reply:    "I hear that you're feeling down, and I want you to know that your feelings are valid. It takes strength to share these emotions. Can you tell me more about what's been weighing on your heart?",
	},
	{
		keywords: []string{"anxious", "worried", "nervous"},
		reply:    "Anxiety can feel overwhelming, but recognizing it is the first step toward managing it. Your concerns are important to me. What specific thoughts are causing you the most distress right now?",
	},
	{
		keywords: []string{"stress", "pressure", "overwhelm"},
		reply:    "It sounds like you're carrying a lot right now. Stress can make even simple tasks feel insurmountable. Let's take a moment to breathe and explore what might help lighten your load.",
	},
	{
		keywords: []string{"thank", "appreciate"},
		reply:    "I'm genuinely glad our conversation is meaningful to you. Your openness and willingness to engage with your feelings is a testament to your inner strength. What aspects of our dialogue have been most helpful?",
	},
	{
		keywords: []string{"help", "support"},
		reply:    "Asking for support shows courage, not weakness. Everyone needs guidance sometimes. What kind of support feels most important to you right now - emotional understanding, practical strategies, or simply someone to listen?",
	},
	{
		keywords: []string{"angry", "mad", "frustrated"},
		reply:    "I can sense some frustration in your words. Anger is a natural emotion, and it's okay to feel it. What's happened that's making you feel this way?",
	},
	{
		keywords: []string{"tired", "exhausted", "fatigue"},
		reply:    "Feeling tired can affect every aspect of our lives. It's important to honor your need for rest. What do you think might help you recharge right now?",
	},
	{
		keywords: []string{"lonely", "alone", "isolated"},
		reply:    "Feeling alone can be deeply challenging. You're not alone in this moment - I'm here with you. What would help you feel more connected right now?",
	},
}

var fallbacks = []string{
	"I understand how you're feeling. It takes courage to share these thoughts.",
	"Thank you for opening up to me. Your feelings are valid and important.",
	"It sounds like you're going through a challenging time. Let's explore this together.",
	"I'm here to listen without judgment. What else would you like to share?",
	"Your perspective is valuable. How long have you been feeling this way?",
	"It's okay to feel this way. Many people experience similar emotions.",
	"What do you think might help you feel better in this situation?",
	"I appreciate your honesty. Let's work through this step by step.",
	"Taking time to reflect on your feelings is a positive step. What insights have you gained?",
	"Your well-being matters. Let's consider some gentle approaches to help you feel more balanced.",
	"I hear the concern in your words. Let's take this one step at a time.",
	"You're not alone in this. Many people face similar challenges and find ways to move forward.",
	"What aspects of this situation feel most overwhelming to you right now?",
	"Recognizing your emotions is the first step toward understanding them better.",
	"Your resilience shines through even in difficult moments. What strengths have helped you cope so far?",
}

type Service struct {
	pick func(n int) int
}

func New() *Service {
	return &Service{pick: rand.Intn}
}

func (s *Service) Reply(message string) string {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply
			}
		}
	}
	return fallbacks[s.pick(len(fallbacks))]
}
