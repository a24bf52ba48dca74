package wellness

import "time"

// Post is one community feed item.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Tag       string    `json:"tag"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// SeedPosts provides the launch feed content.
func SeedPosts() []Post {
	return []Post{
		{
			ID:      "p-morning-anxiety",
			Author:  "Sarah M.",
			Tag:     "Anxiety",
			Title:   "Does anyone else feel anxious in the morning?",
			Content: "I wake up with a racing heart almost every day. Looking for tips on how to calm down immediately.",
			Likes:   24, Comments: 8,
		},
		{
			ID:      "p-meditation-streak",
			Author:  "Mike T.",
			Tag:     "Wins",
			Title:   "I meditated for 7 days straight!",
			Content: "Just wanted to share a small win. It wasn't easy but I feel so much clearer.",
			Likes:   156, Comments: 23,
		},
		{
			ID:      "p-brown-noise",
			Author:  "Anon",
			Tag:     "Sleep",
			Title:   "Brown noise is a game changer.",
			Content: "If you have ADHD or racing thoughts, try the Brown Noise in the tools section. It saved my sleep.",
			Likes:   42, Comments: 5,
		},
	}
}
