// Package conversation keeps per-session question/answer histories.
package conversation

import "cypher_chat/pkg"

// History holds the questions and answers of one session. Both slices are
// appended together so they always have the same length.
type History struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

func NewHistory() *History {
	return &History{Questions: []string{}, Answers: []string{}}
}

func (h *History) Append(question, answer string) {
	h.Questions = append(h.Questions, question)
	h.Answers = append(h.Answers, answer)
}

func (h *History) Len() int {
	return len(h.Questions)
}

// Recent returns up to n exchanges, newest first. n <= 0 returns all of them.
func (h *History) Recent(n int) []pkg.Exchange {
	total := h.Len()
	if len(h.Answers) < total {
		total = len(h.Answers)
	}
	if n <= 0 || n > total {
		n = total
	}

	out := make([]pkg.Exchange, 0, n)
	for i := total - 1; i >= total-n; i-- {
		out = append(out, pkg.Exchange{Question: h.Questions[i], Answer: h.Answers[i]})
	}
	return out
}

func (h *History) clone() *History {
	c := &History{
		Questions: make([]string, len(h.Questions)),
		Answers:   make([]string, len(h.Answers)),
	}
	copy(c.Questions, h.Questions)
	copy(c.Answers, h.Answers)
	return c
}
