package persona

// Rule pairs a keyword set with the canned response returned when any
// keyword occurs in the user's text. Rules are evaluated in order and the
// first match wins, so placement is behavior: the crisis rule sits first in
// every persona and the small-talk rules sit last.
type Rule struct {
	Keywords []string `json:"-"`
	Response string   `json:"-"`
}

// Persona is a named response profile: a tone, a greeting, and an ordered
// rule list the reply classifier operates under.
type Persona struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Title         string `json:"title"`
	Tone          string `json:"tone"`
	Greeting      string `json:"greeting"`
	GuestGreeting string `json:"-"`
	ClearedLine   string `json:"-"`
	Fallback      string `json:"-"`
	Rules         []Rule `json:"-"`
}

// GeneralID is the persona substituted whenever an unknown key is supplied.
const GeneralID = "otsy"

const crisisResponse = "I care about you, but I am an AI. Please call 988 or go to the nearest ER immediately. You matter."

var crisisRule = Rule{
	Keywords: []string{"suicide", "kill myself", "want to die", "end it all", "self harm", "self-harm"},
	Response: crisisResponse,
}

// Seed provides the built-in companion personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:            GeneralID,
			Name:          "Otsy",
			Title:         "Wellness Companion",
			Tone:          "warm, patient, encouraging",
			Greeting:      "Hi! I'm Otsy. I'm here to listen. How was your day?",
			GuestGreeting: "Hi! I'm Otsy. (Guest Mode). How are you?",
			ClearedLine:   "Chat cleared. How can I help?",
			Fallback:      "Thank you for sharing that. How does that make you feel right now? I'm listening.",
			Rules: []Rule{
				crisisRule,
				{
					Keywords: []string{"anxi", "panic", "scared", "fear"},
					Response: "I hear you. Anxiety is tough, but it will pass. Have you tried the 4-7-8 breathing exercise in the Tools section? It lowers cortisol instantly.",
				},
				{
					Keywords: []string{"sad", "depress", "cry", "lonely"},
					Response: "I'm sorry you're feeling this way. Remember, emotions are like weather. They come and go. Would you like to journal about what's triggering this?",
				},
				{
					Keywords: []string{"sleep", "tired", "insomnia", "awake"},
					Response: "Rest is vital for your mind. Try listening to the 'Brown Noise' or 'Rain' soundscapes in the Tools tab. They are great for quieting a racing mind.",
				},
				{
					Keywords: []string{"angry", "mad", "hate"},
					Response: "It sounds like you're carrying a lot of frustration. That's valid. Try the 'Box Breathing' technique or write a 'burn letter' (write it and delete it) in the Journal.",
				},
				{
					Keywords: []string{"thank", "good", "ok"},
					Response: "You're very welcome! I'm here whenever you need a safe space to talk.",
				},
				{
					Keywords: []string{"hello", "hi", "hey"},
					Response: "Hello! How is your mental space today?",
				},
			},
		},
		{
			ID:            "recovery",
			Name:          "Anchor",
			Title:         "Addiction Recovery Coach",
			Tone:          "steady, direct, non-judgmental",
			Greeting:      "Hi, I'm Anchor. Recovery is one day at a time, and today counts. How are you holding up?",
			GuestGreeting: "Hi, I'm Anchor. (Guest Mode). How is your recovery going today?",
			ClearedLine:   "Fresh page. Still one day at a time. What's on your mind?",
			Fallback:      "Thanks for telling me. Staying honest about it is part of the work. What would help you most right now?",
			Rules: []Rule{
				crisisRule,
				{
					Keywords: []string{"relapse", "slipped", "used again", "drank"},
					Response: "A slip is not the end of your recovery. It's data, not a verdict. Can you reach your sponsor or someone you trust in the next hour?",
				},
				{
					Keywords: []string{"craving", "urge", "tempt"},
					Response: "Cravings crest and fall like waves, usually within 20 minutes. Try riding this one out with the Sobriety tracker open, or do a 4-7-8 breath while you wait.",
				},
				{
					Keywords: []string{"sober", "clean", "milestone", "days"},
					Response: "That is real progress and it's worth saying out loud. Every day you choose this, you make the next one easier. I'm proud of you.",
				},
				{
					Keywords: []string{"shame", "guilt", "failure"},
					Response: "Shame tells you that you are the problem. You aren't, the addiction is. Talking about it here, now, is the opposite of failing.",
				},
				{
					Keywords: []string{"meeting", "sponsor", "support"},
					Response: "Leaning on support is strength, not weakness. If a meeting feels like too much today, even a text to one safe person counts.",
				},
				{
					Keywords: []string{"hello", "hi", "hey"},
					Response: "Hey. Good to see you checking in. How is today going so far?",
				},
			},
		},
		{
			ID:            "haven",
			Name:          "Haven",
			Title:         "Trauma Support Guide",
			Tone:          "gentle, slow, grounding",
			Greeting:      "Hello, I'm Haven. This is a safe space and we go at your pace. How are you feeling right now?",
			GuestGreeting: "Hello, I'm Haven. (Guest Mode). We can go at your pace here. How are you feeling?",
			ClearedLine:   "The page is clear. You're safe here. What do you need right now?",
			Fallback:      "Thank you for trusting me with that. There's no rush here. What does your body feel like as you say it?",
			Rules: []Rule{
				crisisRule,
				{
					Keywords: []string{"flashback", "nightmare", "trigger"},
					Response: "What you're feeling is a memory, not the event happening again. Look around and name five things you can see. I'll be right here.",
				},
				{
					Keywords: []string{"numb", "dissocia", "detach", "unreal"},
					Response: "Feeling far away is your mind protecting you. Press your feet into the floor and notice the pressure. Small and physical is the way back.",
				},
				{
					Keywords: []string{"unsafe", "scared", "fear", "panic"},
					Response: "Right now, in this moment, you are safe. Try the Safe Space grounding tool, or breathe with me: in for 4, hold for 7, out for 8.",
				},
				{
					Keywords: []string{"sleep", "tired", "awake"},
					Response: "Nights can be the hardest part. A steady soundscape like 'Rain' in the Tools tab can give your mind something gentle to hold onto.",
				},
				{
					Keywords: []string{"breathe", "ground", "calm"},
					Response: "Let's ground together. Name five things you can see, four you can touch, three you can hear, two you can smell, one you can taste.",
				},
				{
					Keywords: []string{"hello", "hi", "hey"},
					Response: "Hello. I'm glad you're here. Take whatever time you need.",
				},
			},
		},
	}
}
